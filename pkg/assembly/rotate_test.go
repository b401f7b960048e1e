package assembly

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"girder/pkg/part"
	"girder/pkg/spatial"
)

func TestRotateFreePart(t *testing.T) {
	s := New()
	id := addStrip(t, s, 5, v3.Vec{X: 3, Y: 4})

	if err := s.RotatePart(id, spatial.HalfPi); err != nil {
		t.Fatal(err)
	}
	p := s.MustPart(id)
	wantVec(t, p.Position, v3.Vec{X: 3, Y: 4}, "free spin position")
	if !p.Rotation.ApproxEqual(spatial.AxisAngle(spatial.UnitZ, spatial.HalfPi), geomTol) {
		t.Errorf("rotation = %v, want quarter turn about Z", p.Rotation)
	}

	// Deltas accumulate on the part's own Z axis.
	if err := s.RotatePart(id, spatial.HalfPi); err != nil {
		t.Fatal(err)
	}
	p = s.MustPart(id)
	if !p.Rotation.ApproxEqual(spatial.AxisAngle(spatial.UnitZ, 2*spatial.HalfPi), geomTol) {
		t.Errorf("rotation = %v, want half turn about Z", p.Rotation)
	}
}

// A part with one joint pivots about the joined hole: the joined holes
// stay coincident while the free end sweeps.
func TestRotateSingleJointPivots(t *testing.T) {
	s := New()
	s1 := addStrip(t, s, 5, v3.Vec{})
	s2 := addStrip(t, s, 3, v3.Vec{X: 100})
	mustAssemble(t, s, s1, 2, s2, 0)

	if err := s.RotatePart(s2, spatial.HalfPi); err != nil {
		t.Fatal(err)
	}

	p2 := s.MustPart(s2)
	if !p2.Rotation.ApproxEqual(spatial.AxisAngle(spatial.UnitZ, spatial.HalfPi), geomTol) {
		t.Errorf("rotation = %v, want quarter turn", p2.Rotation)
	}
	// Joined hole 0 is the strip origin, so the pivot position holds.
	wantVec(t, p2.Position, v3.Vec{X: 2 * part.HoleSpacing, Z: part.Thickness}, "pivot position")

	// The far hole swept a quarter turn: +X at the pivot becomes +Y.
	far, _, err := p2.HoleWorld(2)
	if err != nil {
		t.Fatal(err)
	}
	wantVec(t, far, v3.Vec{X: 2 * part.HoleSpacing, Y: 2 * part.HoleSpacing, Z: part.Thickness}, "swept hole")

	wa, wb := jointHoleWorlds(t, s)
	sep := wb.Sub(wa)
	wantVec(t, sep, v3.Vec{Z: part.Thickness}, "joined hole separation")
}

// Rotating about a mid-strip joint re-solves the position so the joined
// hole, not the origin, is the fixed point.
func TestRotateAboutMidHole(t *testing.T) {
	s := New()
	s1 := addStrip(t, s, 5, v3.Vec{})
	s2 := addStrip(t, s, 5, v3.Vec{X: 100})
	mustAssemble(t, s, s1, 0, s2, 2)

	if err := s.RotatePart(s2, spatial.HalfPi); err != nil {
		t.Fatal(err)
	}

	p2 := s.MustPart(s2)
	mid, _, err := p2.HoleWorld(2)
	if err != nil {
		t.Fatal(err)
	}
	wantVec(t, mid, v3.Vec{Z: part.Thickness}, "joined hole stays put")

	end, _, err := p2.HoleWorld(4)
	if err != nil {
		t.Fatal(err)
	}
	wantVec(t, end, v3.Vec{Y: 2 * part.HoleSpacing, Z: part.Thickness}, "far hole swept")
}

// Two or more joints fully constrain a part: rotation is a silent no-op.
func TestRotateFullyConstrained(t *testing.T) {
	s := New()
	s1 := addStrip(t, s, 5, v3.Vec{})
	s2 := addStrip(t, s, 5, v3.Vec{X: 100})
	s3 := addStrip(t, s, 5, v3.Vec{Y: 100})
	mustAssemble(t, s, s1, 0, s2, 0)
	mustAssemble(t, s, s3, 0, s2, 4)

	if got := s.jointCount(s2); got != 2 {
		t.Fatalf("middle strip joint count = %d, want 2", got)
	}

	before := s.MustPart(s2)
	v := s.Version()
	if err := s.RotatePart(s2, spatial.HalfPi); err != nil {
		t.Fatal(err)
	}
	after := s.MustPart(s2)
	wantVec(t, after.Position, before.Position, "constrained position")
	if !after.Rotation.ApproxEqual(before.Rotation, geomTol) {
		t.Error("constrained part must not rotate")
	}
	if s.Version() != v {
		t.Error("a constrained no-op must not bump the version")
	}

	// The end strips still hold a single joint each and may pivot.
	if err := s.RotatePart(s3, spatial.HalfPi); err != nil {
		t.Fatal(err)
	}
	if !s.MustPart(s3).Rotation.ApproxEqual(spatial.AxisAngle(spatial.UnitZ, spatial.HalfPi), geomTol) {
		t.Error("end strip should still pivot")
	}
}

// jointCount exposes the locked counter for tests.
func (s *Store) jointCount(id PartID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jointCountLocked(id)
}

// Pivoting against the angle bracket's upright hole sweeps in the
// vertical plane defined by the horizontal hole axis.
func TestRotateAgainstUprightHole(t *testing.T) {
	s := New()
	bracket, err := s.AddPart(part.AngleBracket, InitialProps{})
	if err != nil {
		t.Fatal(err)
	}
	strip := addStrip(t, s, 3, v3.Vec{X: 100})
	mustAssemble(t, s, bracket, 1, strip, 0)

	if err := s.RotatePart(strip, spatial.HalfPi); err != nil {
		t.Fatal(err)
	}

	off, err := part.HoleOffset(part.AngleBracket, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	ps := s.MustPart(strip)
	joined, _, err := ps.HoleWorld(0)
	if err != nil {
		t.Fatal(err)
	}
	// Upright hole: zero gap, so the joined hole stays exactly on it.
	wantVec(t, joined, off, "joined hole against upright flange")

	// The hole axis is unchanged by a spin about the part's own Z.
	_, orient, err := ps.HoleWorld(0)
	if err != nil {
		t.Fatal(err)
	}
	wantVec(t, orient.Apply(spatial.UnitZ), spatial.UnitX, "hole axis after spin")
}
