// Package spatial provides the pose math used by the assembly engine:
// positions are sdfx v3.Vec values and orientations are unit quaternions
// built on gonum's quat package. Orientation is quaternion everywhere
// inside the engine; Euler angles exist only at the presentation
// boundary (see Rotation.Euler) so incremental composition never hits
// gimbal lock or ordering ambiguity.
package spatial

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/num/quat"
)

// HalfPi is a quarter turn in radians.
const HalfPi = math.Pi / 2

// Unit axes of the local frame.
var (
	UnitX = v3.Vec{X: 1}
	UnitY = v3.Vec{Y: 1}
	UnitZ = v3.Vec{Z: 1}
)

// Rotation is a unit quaternion representing a 3D orientation.
// The zero value is NOT a valid rotation; use Identity.
type Rotation struct {
	q quat.Number
}

// Identity returns the no-op rotation.
func Identity() Rotation {
	return Rotation{q: quat.Number{Real: 1}}
}

// AxisAngle returns the rotation of angle radians about axis.
// A zero axis yields the identity rotation.
func AxisAngle(axis v3.Vec, angle float64) Rotation {
	if axis.Length() == 0 {
		return Identity()
	}
	a := axis.Normalize()
	s, c := math.Sincos(angle / 2)
	return Rotation{q: quat.Number{Real: c, Imag: a.X * s, Jmag: a.Y * s, Kmag: a.Z * s}}
}

// Mul composes rotations: (r.Mul(o)).Apply(v) == r.Apply(o.Apply(v)).
// Right-multiplying by a rotation applies it in r's local frame.
func (r Rotation) Mul(o Rotation) Rotation {
	return Rotation{q: quat.Mul(r.q, o.q)}
}

// Inverse returns the reverse rotation. For unit quaternions the
// conjugate is the inverse.
func (r Rotation) Inverse() Rotation {
	return Rotation{q: quat.Conj(r.q)}
}

// Apply rotates v by r.
func (r Rotation) Apply(v v3.Vec) v3.Vec {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	out := quat.Mul(quat.Mul(r.q, p), quat.Conj(r.q))
	return v3.Vec{X: out.Imag, Y: out.Jmag, Z: out.Kmag}
}

// Normalize rescales r to unit length, guarding against drift after
// long chains of composition. A degenerate zero quaternion normalizes
// to identity.
func (r Rotation) Normalize() Rotation {
	n := quat.Abs(r.q)
	if n == 0 {
		return Identity()
	}
	return Rotation{q: quat.Scale(1/n, r.q)}
}

// ApproxEqual reports whether two rotations represent the same
// orientation within tol, accounting for the q/-q double cover.
func (r Rotation) ApproxEqual(o Rotation, tol float64) bool {
	d := quat.Abs(quat.Sub(r.q, o.q))
	s := quat.Abs(quat.Add(r.q, o.q))
	return d <= tol || s <= tol
}

func (r Rotation) String() string {
	return fmt.Sprintf("(%.4f; %.4f, %.4f, %.4f)", r.q.Real, r.q.Imag, r.q.Jmag, r.q.Kmag)
}

// FromEuler builds a rotation from Euler angles in radians using the
// Rz·Ry·Rx convention, matching the kernel backend's Rotate order.
func FromEuler(x, y, z float64) Rotation {
	qz := AxisAngle(UnitZ, z)
	qy := AxisAngle(UnitY, y)
	qx := AxisAngle(UnitX, x)
	return qz.Mul(qy).Mul(qx)
}

// Euler decomposes r into (x, y, z) Euler angles in radians under the
// same Rz·Ry·Rx convention as FromEuler. Intended only for handing
// orientations to presentation code; engine math stays in quaternions.
func (r Rotation) Euler() (x, y, z float64) {
	q := r.Normalize().q
	w, i, j, k := q.Real, q.Imag, q.Jmag, q.Kmag

	sinY := 2 * (w*j - k*i)
	if sinY > 1 {
		sinY = 1
	} else if sinY < -1 {
		sinY = -1
	}
	y = math.Asin(sinY)
	x = math.Atan2(2*(w*i+j*k), 1-2*(i*i+j*j))
	z = math.Atan2(2*(w*k+i*j), 1-2*(j*j+k*k))
	return x, y, z
}

// Pose is a rigid placement: a local frame's origin and orientation in
// world space.
type Pose struct {
	Position    v3.Vec
	Orientation Rotation
}

// Apply maps a local-frame point to world space.
func (p Pose) Apply(local v3.Vec) v3.Vec {
	return p.Position.Add(p.Orientation.Apply(local))
}

// HoleWorld composes a part pose with a hole's local offset and axis
// orientation, returning the hole's world position and the world
// orientation whose Z axis is the hole axis.
func HoleWorld(p Pose, offset v3.Vec, axis Rotation) (v3.Vec, Rotation) {
	return p.Apply(offset), p.Orientation.Mul(axis)
}
