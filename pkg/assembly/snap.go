package assembly

import (
	"fmt"

	"girder/pkg/part"
	"girder/pkg/spatial"
)

// assembleLocked runs the snap-assembly algorithm for a pending hole a
// and a just-clicked hole b on two distinct parts. Exactly one of the
// two parts is moved onto the other; a screw, a nut, and a joint are
// created. Call with the store lock held.
func (s *Store) assembleLocked(a, b HoleRef) error {
	pa, ok := s.parts[a.Part]
	if !ok {
		return fmt.Errorf("assemble: %w: %s", ErrPartNotFound, a.Part.Short())
	}
	pb, ok := s.parts[b.Part]
	if !ok {
		return fmt.Errorf("assemble: %w: %s", ErrPartNotFound, b.Part.Short())
	}

	mover, movHole, stat, statHole := s.pickMoverLocked(pa, a.Hole, pb, b.Hole)

	statOff, err := part.HoleOffset(stat.Type, statHole, stat.Length)
	if err != nil {
		return fmt.Errorf("assemble: stationary hole: %w", err)
	}
	statAxis, err := part.HoleAxis(stat.Type, statHole, stat.Length)
	if err != nil {
		return fmt.Errorf("assemble: stationary hole: %w", err)
	}
	movOff, err := part.HoleOffset(mover.Type, movHole, mover.Length)
	if err != nil {
		return fmt.Errorf("assemble: moving hole: %w", err)
	}
	movAxis, err := part.HoleAxis(mover.Type, movHole, mover.Length)
	if err != nil {
		return fmt.Errorf("assemble: moving hole: %w", err)
	}

	// The stationary hole defines the target: its world position is the
	// joint interface and its world axis is the stacking direction.
	interfacePos, target := spatial.HoleWorld(stat.Pose(), statOff, statAxis)
	worldAxis := target.Apply(spatial.UnitZ)

	// Solve mover orientation so its own hole axis reproduces the target,
	// then place it so the holes coincide modulo the stacking gap.
	mover.Rotation = target.Mul(movAxis.Inverse()).Normalize()
	gap := stackingGap(stat.Type, statHole)
	mover.Position = interfacePos.
		Add(worldAxis.MulScalar(gap)).
		Sub(mover.Rotation.Apply(movOff))

	// Fastener pair straddling the interface along the hole axis.
	s.addPartLocked(&Part{
		ID:       NewPartID(),
		Type:     part.Screw,
		Position: interfacePos.Sub(worldAxis.MulScalar(part.Thickness)),
		Rotation: target,
		Color:    fastenerColor,
	})
	s.addPartLocked(&Part{
		ID:       NewPartID(),
		Type:     part.Nut,
		Position: interfacePos.Add(worldAxis.MulScalar(part.Thickness)),
		Rotation: target,
		Color:    fastenerColor,
	})

	// Joint roles stay as the original pending/clicked pair no matter
	// which part moved.
	s.joints = append(s.joints, &Joint{
		ID:    NewJointID(),
		PartA: a.Part,
		PartB: b.Part,
		HoleA: a.Hole,
		HoleB: b.Hole,
	})
	return nil
}

// pickMoverLocked decides which of the two parts relocates. An
// unanchored part moves onto an anchored one. With equal anchoring the
// clicked part b moves onto the pending part a, except that a strip
// always moves onto a non-strip so brackets stay put as assembly bases.
// The strip preference is an empirical policy, kept in one place so it
// can be revisited.
func (s *Store) pickMoverLocked(pa *Part, holeA int, pb *Part, holeB int) (mover *Part, moverHole int, stat *Part, statHole int) {
	aAnchored := s.anchoredLocked(pa.ID)
	bAnchored := s.anchoredLocked(pb.ID)

	moveA := false
	switch {
	case !aAnchored && bAnchored:
		moveA = true
	case aAnchored == bAnchored:
		moveA = pa.Type == part.Strip && pb.Type != part.Strip
	}

	if moveA {
		return pa, holeA, pb, holeB
	}
	return pb, holeB, pa, holeA
}

// stackingGap returns the offset inserted between two joined holes
// along the shared axis: zero when the stationary hole sits on the
// angle bracket's exposed upright flange, the material thickness
// otherwise.
func stackingGap(t part.Type, hole int) float64 {
	if part.UprightHole(t, hole) {
		return 0
	}
	return part.Thickness
}
