// Package part defines the catalog of mechanical part types and the
// hole geometry model: for every (type, hole index) pair it answers
// where the hole sits in the part's local frame and which way its axis
// points. Both functions are pure; all placement state lives in the
// assembly store.
package part

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"girder/pkg/spatial"
)

// HoleSpacing is the hole pitch in length units, shared by all part types.
const HoleSpacing = 12.7

// Thickness is the material thickness, used for stacking offsets.
const Thickness = 1.0

// MinStripLength and MaxStripLength bound the hole count of a strip.
const (
	MinStripLength = 3
	MaxStripLength = 25
)

// Type enumerates the part types.
type Type int

const (
	Strip Type = iota // perforated strip, holes along local X
	Screw             // fastener, no holes
	Nut               // fastener, no holes
	CornerBracket     // single planar flange, 3 holes
	AngleBracket      // bent bracket, base flange + upright flange
)

func (t Type) String() string {
	switch t {
	case Strip:
		return "strip"
	case Screw:
		return "screw"
	case Nut:
		return "nut"
	case CornerBracket:
		return "corner-bracket"
	case AngleBracket:
		return "angle-bracket"
	default:
		return "unknown"
	}
}

// ParseType converts a string code to a Type.
func ParseType(s string) (Type, error) {
	switch s {
	case "strip":
		return Strip, nil
	case "screw":
		return Screw, nil
	case "nut":
		return Nut, nil
	case "corner-bracket":
		return CornerBracket, nil
	case "angle-bracket":
		return AngleBracket, nil
	}
	return 0, fmt.Errorf("unknown part type %q", s)
}

// Structural reports whether parts of this type can bear joints.
// Screws and nuts are decorative outputs of assembly and never hold joints.
func (t Type) Structural() bool {
	switch t {
	case Strip, CornerBracket, AngleBracket:
		return true
	}
	return false
}

// HoleCount returns the number of holes on a part of the given type.
// length is the hole count of a strip and is ignored for other types.
func HoleCount(t Type, length int) int {
	switch t {
	case Strip:
		return length
	case CornerBracket:
		return 3
	case AngleBracket:
		return 2
	}
	return 0
}

// ErrHoleIndex is returned when a hole index is outside the valid range
// for a part type.
type ErrHoleIndex struct {
	Type  Type
	Index int
	Count int
}

func (e ErrHoleIndex) Error() string {
	return fmt.Sprintf("%s has no hole %d (valid range [0, %d))", e.Type, e.Index, e.Count)
}

// HoleOffset returns the local-frame position of hole index on a part of
// the given type. length is the strip hole count (ignored otherwise).
func HoleOffset(t Type, index, length int) (v3.Vec, error) {
	n := HoleCount(t, length)
	if index < 0 || index >= n {
		return v3.Vec{}, ErrHoleIndex{Type: t, Index: index, Count: n}
	}

	switch t {
	case Strip:
		return v3.Vec{X: float64(index) * HoleSpacing}, nil

	case CornerBracket:
		switch index {
		case 0:
			return v3.Vec{}, nil
		case 1:
			return v3.Vec{X: HoleSpacing}, nil
		default:
			return v3.Vec{Y: HoleSpacing}, nil
		}

	case AngleBracket:
		if index == 0 {
			return v3.Vec{}, nil
		}
		// Upright flange hole: half a pitch along X, half a pitch up.
		return v3.Vec{X: HoleSpacing / 2, Z: HoleSpacing / 2}, nil
	}

	return v3.Vec{}, ErrHoleIndex{Type: t, Index: index, Count: 0}
}

// HoleAxis returns the local-frame orientation of hole index on a part
// of the given type. The hole axis is local Z rotated by this orientation.
// Every hole is identity except the angle bracket's upright-flange hole,
// whose axis points along local X. This per-hole orientation is what lets
// the assembly algorithm stay general across part types.
func HoleAxis(t Type, index, length int) (spatial.Rotation, error) {
	n := HoleCount(t, length)
	if index < 0 || index >= n {
		return spatial.Identity(), ErrHoleIndex{Type: t, Index: index, Count: n}
	}

	if t == AngleBracket && index == 1 {
		return spatial.AxisAngle(v3.Vec{Y: 1}, spatial.HalfPi), nil
	}
	return spatial.Identity(), nil
}

// UprightHole reports whether (t, index) is the angle bracket's
// upright-flange hole. That hole sits on an exposed surface, so parts
// stacked against it get a zero stacking offset instead of Thickness.
func UprightHole(t Type, index int) bool {
	return t == AngleBracket && index == 1
}
