package assembly

import (
	"fmt"

	"girder/pkg/part"
	"girder/pkg/spatial"
)

// rotateConstrainedLocked applies the already-composed orientation spun
// to a part holding exactly one joint j, then re-solves the part's
// position so its joined hole stays coincident (modulo the stacking
// gap) with the other part's hole. The other part is the pivot; the
// rotating part's hole sweeps around it. One direct solve suffices
// because a single joint is the only constraint — the fully-constrained
// case is rejected before this runs. Call with the store lock held.
func (s *Store) rotateConstrainedLocked(p *Part, j *Joint, spun spatial.Rotation) error {
	ownHole, otherRef, ok := j.End(p.ID)
	if !ok {
		return fmt.Errorf("joint %s does not touch part %s", j.ID.Short(), p.ID.Short())
	}
	other, exists := s.parts[otherRef.Part]
	if !exists {
		return fmt.Errorf("joint %s references missing part %s", j.ID.Short(), otherRef.Part.Short())
	}

	pivotPos, pivotOrient, err := other.HoleWorld(otherRef.Hole)
	if err != nil {
		return fmt.Errorf("pivot hole: %w", err)
	}
	ownOff, err := part.HoleOffset(p.Type, ownHole, p.Length)
	if err != nil {
		return fmt.Errorf("own hole: %w", err)
	}

	axis := pivotOrient.Apply(spatial.UnitZ)
	gap := stackingGap(other.Type, otherRef.Hole)

	p.Rotation = spun
	p.Position = pivotPos.
		Add(axis.MulScalar(gap)).
		Sub(spun.Apply(ownOff))
	return nil
}
