// Package assembly implements the authoritative assembly store: placed
// parts, the joints constraining them, hole-pairing selection state, and
// the snap-assembly and constrained-rotation algorithms. All mutation
// goes through store commands; each command is an atomic read-compute-
// publish transition.
package assembly

import (
	"github.com/google/uuid"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"girder/pkg/part"
	"girder/pkg/spatial"
)

// PartID identifies a placed part.
type PartID string

// NewPartID returns a fresh unique part identifier.
func NewPartID() PartID {
	return PartID(uuid.NewString())
}

// IsZero reports whether the ID is unset.
func (id PartID) IsZero() bool {
	return id == ""
}

// Short returns an abbreviated form for log and error messages.
func (id PartID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

// JointID identifies a joint.
type JointID string

// NewJointID returns a fresh unique joint identifier.
func NewJointID() JointID {
	return JointID(uuid.NewString())
}

// IsZero reports whether the ID is unset.
func (id JointID) IsZero() bool {
	return id == ""
}

// Short returns an abbreviated form for log and error messages.
func (id JointID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

// Part is a placed component. Length is the hole count and is
// meaningful only for strips (present and >= 3 iff Type == Strip).
// Color is cosmetic and carries no engine semantics.
type Part struct {
	ID       PartID
	Type     part.Type
	Length   int
	Position v3.Vec
	Rotation spatial.Rotation
	Color    string
}

// Pose returns the part's world placement.
func (p *Part) Pose() spatial.Pose {
	return spatial.Pose{Position: p.Position, Orientation: p.Rotation}
}

// HoleWorld returns the world position of the given hole and the world
// orientation whose Z axis is the hole axis.
func (p *Part) HoleWorld(index int) (v3.Vec, spatial.Rotation, error) {
	off, err := part.HoleOffset(p.Type, index, p.Length)
	if err != nil {
		return v3.Vec{}, spatial.Identity(), err
	}
	axis, err := part.HoleAxis(p.Type, index, p.Length)
	if err != nil {
		return v3.Vec{}, spatial.Identity(), err
	}
	pos, orient := spatial.HoleWorld(p.Pose(), off, axis)
	return pos, orient, nil
}

// HoleRef names one hole on one part.
type HoleRef struct {
	Part PartID
	Hole int
}

// Joint is a structural link between two holes on two structural parts.
// Conceptually undirected, but the A/B roles are fixed at creation: A is
// the pending hole and B the clicked hole of the pairing that produced
// the joint, regardless of which part physically moved.
type Joint struct {
	ID    JointID
	PartA PartID
	PartB PartID
	HoleA int
	HoleB int
}

// Touches reports whether the joint has id as either endpoint.
func (j *Joint) Touches(id PartID) bool {
	return j.PartA == id || j.PartB == id
}

// End returns the joint's hole on the given part and the opposite
// endpoint. ok is false when the part is not an endpoint of the joint.
func (j *Joint) End(id PartID) (ownHole int, other HoleRef, ok bool) {
	switch id {
	case j.PartA:
		return j.HoleA, HoleRef{Part: j.PartB, Hole: j.HoleB}, true
	case j.PartB:
		return j.HoleB, HoleRef{Part: j.PartA, Hole: j.HoleA}, true
	}
	return 0, HoleRef{}, false
}

// InitialProps carries the caller-supplied fields for AddPart.
// A zero Rotation is treated as identity. An empty Color is assigned
// from the store's palette.
type InitialProps struct {
	Length   int
	Position v3.Vec
	Rotation spatial.Rotation
	Color    string
}

// PartialProps carries an UpdatePart patch; nil fields are left unchanged.
type PartialProps struct {
	Position *v3.Vec
	Rotation *spatial.Rotation
	Color    *string
	Length   *int
}

// Snapshot is a value copy of the full store state, safe to hand to
// validation, tessellation, and presentation code.
type Snapshot struct {
	Parts        []Part
	Joints       []Joint
	SelectedPart PartID
	Pending      *HoleRef
	Version      uint64
}

// Part returns a pointer into the snapshot's part slice, or nil.
func (s *Snapshot) Part(id PartID) *Part {
	for i := range s.Parts {
		if s.Parts[i].ID == id {
			return &s.Parts[i]
		}
	}
	return nil
}
