package assembly

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"girder/pkg/part"
	"girder/pkg/spatial"
)

const geomTol = 1e-9

// mustAssemble drives the hole-pairing machine through a full pairing:
// pending hole on a, then a click on b that triggers the snap.
func mustAssemble(t *testing.T, s *Store, a PartID, holeA int, b PartID, holeB int) {
	t.Helper()
	if err := s.SelectHole(a, holeA); err != nil {
		t.Fatalf("SelectHole(a): %v", err)
	}
	if err := s.SelectHole(b, holeB); err != nil {
		t.Fatalf("SelectHole(b): %v", err)
	}
}

func wantVec(t *testing.T, got, want v3.Vec, label string) {
	t.Helper()
	if !got.Equals(want, geomTol) {
		t.Errorf("%s = %v, want %v", label, got, want)
	}
}

// jointHoleWorlds returns the world positions of both holes of the
// store's single joint.
func jointHoleWorlds(t *testing.T, s *Store) (v3.Vec, v3.Vec) {
	t.Helper()
	joints := s.Joints()
	if len(joints) != 1 {
		t.Fatalf("joint count = %d, want 1", len(joints))
	}
	j := joints[0]
	pa := s.MustPart(j.PartA)
	pb := s.MustPart(j.PartB)
	wa, _, err := pa.HoleWorld(j.HoleA)
	if err != nil {
		t.Fatal(err)
	}
	wb, _, err := pb.HoleWorld(j.HoleB)
	if err != nil {
		t.Fatal(err)
	}
	return wa, wb
}

func TestAssembleTwoStrips(t *testing.T) {
	s := New()
	s1 := addStrip(t, s, 5, v3.Vec{})
	s2 := addStrip(t, s, 3, v3.Vec{X: 100, Y: 50})

	mustAssemble(t, s, s1, 2, s2, 0)

	// Both unanchored, both strips: the clicked part moves.
	p1 := s.MustPart(s1)
	p2 := s.MustPart(s2)
	wantVec(t, p1.Position, v3.Vec{}, "stationary strip position")
	if !p2.Rotation.ApproxEqual(spatial.Identity(), geomTol) {
		t.Errorf("mover rotation = %v, want identity", p2.Rotation)
	}
	// Hole 2 of a strip at the origin sits at x = 2 * spacing; the mover
	// stacks one thickness above it along +Z and its hole 0 is its origin.
	wantVec(t, p2.Position, v3.Vec{X: 2 * part.HoleSpacing, Z: part.Thickness}, "mover position")

	// Fastener pair plus the joint itself.
	parts := s.Parts()
	if len(parts) != 4 {
		t.Fatalf("part count = %d, want 4", len(parts))
	}
	if countByType(parts, part.Screw) != 1 || countByType(parts, part.Nut) != 1 {
		t.Error("assembly should add exactly one screw and one nut")
	}
	joints := s.Joints()
	if len(joints) != 1 {
		t.Fatalf("joint count = %d, want 1", len(joints))
	}
	j := joints[0]
	if j.PartA != s1 || j.HoleA != 2 || j.PartB != s2 || j.HoleB != 0 {
		t.Errorf("joint endpoints = %+v, want (s1,2)-(s2,0)", j)
	}

	// The pairing resolves: pending clears and the clicked part becomes selected.
	if s.PendingHole() != nil {
		t.Error("pending hole should clear after assembly")
	}
	if s.SelectedPart() != s2 {
		t.Error("clicked part should become selected after assembly")
	}
}

func TestAssembleFastenerPlacement(t *testing.T) {
	s := New()
	s1 := addStrip(t, s, 5, v3.Vec{})
	s2 := addStrip(t, s, 3, v3.Vec{X: 100})
	mustAssemble(t, s, s1, 2, s2, 0)

	iface := v3.Vec{X: 2 * part.HoleSpacing}
	parts := s.Parts()
	for i := range parts {
		switch parts[i].Type {
		case part.Screw:
			wantVec(t, parts[i].Position, iface.Sub(v3.Vec{Z: part.Thickness}), "screw position")
		case part.Nut:
			wantVec(t, parts[i].Position, iface.Add(v3.Vec{Z: part.Thickness}), "nut position")
		default:
			continue
		}
		if parts[i].Color != fastenerColor {
			t.Errorf("fastener color = %q, want %q", parts[i].Color, fastenerColor)
		}
	}
}

// Joined holes must coincide in the interface plane and sit apart by
// the stacking gap along the shared axis, whatever the stationary
// part's pose.
func TestAssembleHoleCoincidence(t *testing.T) {
	s := New()
	s1 := addStrip(t, s, 7, v3.Vec{X: 4, Y: -3, Z: 2})
	rot := spatial.AxisAngle(spatial.UnitZ, 0.7).Mul(spatial.AxisAngle(spatial.UnitX, 0.3))
	if err := s.UpdatePart(s1, PartialProps{Rotation: &rot}); err != nil {
		t.Fatal(err)
	}
	s2 := addStrip(t, s, 4, v3.Vec{X: 100})

	mustAssemble(t, s, s1, 4, s2, 1)

	wa, wb := jointHoleWorlds(t, s)
	p1 := s.MustPart(s1)
	_, orient, err := p1.HoleWorld(4)
	if err != nil {
		t.Fatal(err)
	}
	axis := orient.Apply(spatial.UnitZ)

	sep := wb.Sub(wa)
	along := sep.Dot(axis)
	perp := sep.Sub(axis.MulScalar(along)).Length()

	if perp > geomTol {
		t.Errorf("in-plane hole error = %g, want 0", perp)
	}
	if math.Abs(along-part.Thickness) > geomTol {
		t.Errorf("axial gap = %g, want %g", along, part.Thickness)
	}
}

// Scenario: a strip snapped onto a corner bracket. With equal anchoring
// a strip moves onto a non-strip, so the bracket stays put even though
// the strip's hole was the pending one.
func TestAssembleStripMovesOntoBracket(t *testing.T) {
	s := New()
	strip := addStrip(t, s, 5, v3.Vec{X: 100})
	bracket, err := s.AddPart(part.CornerBracket, InitialProps{})
	if err != nil {
		t.Fatal(err)
	}

	mustAssemble(t, s, strip, 0, bracket, 1)

	pb := s.MustPart(bracket)
	wantVec(t, pb.Position, v3.Vec{}, "bracket position")
	if !pb.Rotation.ApproxEqual(spatial.Identity(), geomTol) {
		t.Error("bracket should not rotate")
	}

	off, err := part.HoleOffset(part.CornerBracket, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	ps := s.MustPart(strip)
	wantVec(t, ps.Position, off.Add(v3.Vec{Z: part.Thickness}), "strip position")
	if !ps.Rotation.ApproxEqual(spatial.Identity(), geomTol) {
		t.Errorf("strip rotation = %v, want identity", ps.Rotation)
	}
}

// An anchored part never moves: the free clicked part is relocated
// even when the usual strip-onto-bracket preference points the other way.
func TestAssembleAnchoredStays(t *testing.T) {
	s := New()
	s1 := addStrip(t, s, 5, v3.Vec{})
	s2 := addStrip(t, s, 3, v3.Vec{X: 100})
	mustAssemble(t, s, s1, 2, s2, 0)

	before := s.MustPart(s2)
	s3 := addStrip(t, s, 3, v3.Vec{Y: 100})
	mustAssemble(t, s, s2, 2, s3, 0)

	after := s.MustPart(s2)
	wantVec(t, after.Position, before.Position, "anchored part position")
	if !after.Rotation.ApproxEqual(before.Rotation, geomTol) {
		t.Error("anchored part must not rotate during assembly")
	}
	if s.MustPart(s3).Position.Equals(v3.Vec{Y: 100}, geomTol) {
		t.Error("free clicked part should have moved")
	}
}

// Snapping onto the angle bracket's upright hole reorients the mover
// so its hole axis runs horizontally, with no stacking gap.
func TestAssembleAngleBracketUprightHole(t *testing.T) {
	s := New()
	bracket, err := s.AddPart(part.AngleBracket, InitialProps{})
	if err != nil {
		t.Fatal(err)
	}
	strip := addStrip(t, s, 3, v3.Vec{X: 100})

	mustAssemble(t, s, bracket, 1, strip, 0)

	off, err := part.HoleOffset(part.AngleBracket, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	ps := s.MustPart(strip)
	// Upright hole: no stacking gap, mover hole lands exactly on the interface.
	wantVec(t, ps.Position, off, "strip position")

	_, orient, err := ps.HoleWorld(0)
	if err != nil {
		t.Fatal(err)
	}
	axis := orient.Apply(spatial.UnitZ)
	wantVec(t, axis, spatial.UnitX, "strip hole axis")

	wa, wb := jointHoleWorlds(t, s)
	wantVec(t, wb, wa, "upright holes should coincide exactly")
}

func TestAssembleChainHoleWorlds(t *testing.T) {
	s := New()
	s1 := addStrip(t, s, 5, v3.Vec{})
	s2 := addStrip(t, s, 5, v3.Vec{X: 100})
	s3 := addStrip(t, s, 5, v3.Vec{Y: 100})
	mustAssemble(t, s, s1, 4, s2, 0)
	mustAssemble(t, s, s2, 4, s3, 0)

	// Each new strip stacks one thickness higher along +Z.
	p3 := s.MustPart(s3)
	wantVec(t, p3.Position, v3.Vec{X: 8 * part.HoleSpacing, Z: 2 * part.Thickness}, "third strip position")

	if got := len(s.Joints()); got != 2 {
		t.Fatalf("joint count = %d, want 2", got)
	}
	if got := countByType(s.Parts(), part.Screw); got != 2 {
		t.Errorf("screw count = %d, want 2", got)
	}
}
