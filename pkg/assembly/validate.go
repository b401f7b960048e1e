package assembly

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"girder/pkg/part"
)

// ValidationSeverity indicates whether a validation finding is a broken
// invariant or merely advisory.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // broken store invariant
	SeverityWarning                           // advisory
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	PartID   PartID
	JointID  JointID
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	switch {
	case !e.JointID.IsZero():
		return fmt.Sprintf("[%s] joint %s: %s", e.Severity, e.JointID.Short(), e.Message)
	case !e.PartID.IsZero():
		return fmt.Sprintf("[%s] part %s: %s", e.Severity, e.PartID.Short(), e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
}

// Validate runs all consistency checks over a snapshot and returns the
// findings. The store's own commands uphold these invariants, so errors
// indicate a bug; warnings flag states that are legal but suspicious,
// such as orphaned fasteners left behind by joint removal. Read-only.
func Validate(snap Snapshot) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateParts(snap)...)
	errs = append(errs, validateJoints(snap)...)
	errs = append(errs, validateSelection(snap)...)
	errs = append(errs, validateFasteners(snap)...)
	return errs
}

// validateParts checks per-part invariants: strip lengths stay in
// bounds and only strips carry a length.
func validateParts(snap Snapshot) []ValidationError {
	var errs []ValidationError
	for i := range snap.Parts {
		p := &snap.Parts[i]
		switch {
		case p.Type == part.Strip && (p.Length < part.MinStripLength || p.Length > part.MaxStripLength):
			errs = append(errs, ValidationError{
				PartID:   p.ID,
				Message:  fmt.Sprintf("strip length %d outside [%d, %d]", p.Length, part.MinStripLength, part.MaxStripLength),
				Severity: SeverityError,
			})
		case p.Type != part.Strip && p.Length != 0:
			errs = append(errs, ValidationError{
				PartID:   p.ID,
				Message:  fmt.Sprintf("%s carries a length of %d", p.Type, p.Length),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateJoints checks that every joint references two distinct,
// existing, structural parts and that both hole indices are in range.
func validateJoints(snap Snapshot) []ValidationError {
	var errs []ValidationError
	for i := range snap.Joints {
		j := &snap.Joints[i]

		if j.PartA == j.PartB {
			errs = append(errs, ValidationError{
				JointID:  j.ID,
				Message:  "joint references the same part for both endpoints (self-joint)",
				Severity: SeverityError,
			})
		}

		for _, end := range []struct {
			role string
			id   PartID
			hole int
		}{
			{"part_a", j.PartA, j.HoleA},
			{"part_b", j.PartB, j.HoleB},
		} {
			p := snap.Part(end.id)
			if p == nil {
				errs = append(errs, ValidationError{
					JointID:  j.ID,
					Message:  fmt.Sprintf("%s reference %s does not exist", end.role, end.id.Short()),
					Severity: SeverityError,
				})
				continue
			}
			if !p.Type.Structural() {
				errs = append(errs, ValidationError{
					JointID:  j.ID,
					Message:  fmt.Sprintf("%s is a %s, which cannot bear joints", end.role, p.Type),
					Severity: SeverityError,
				})
				continue
			}
			if _, err := part.HoleOffset(p.Type, end.hole, p.Length); err != nil {
				errs = append(errs, ValidationError{
					JointID:  j.ID,
					Message:  fmt.Sprintf("%s: %v", end.role, err),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateSelection checks that selection state references live parts.
func validateSelection(snap Snapshot) []ValidationError {
	var errs []ValidationError
	if !snap.SelectedPart.IsZero() && snap.Part(snap.SelectedPart) == nil {
		errs = append(errs, ValidationError{
			PartID:   snap.SelectedPart,
			Message:  "selected part does not exist",
			Severity: SeverityError,
		})
	}
	if snap.Pending != nil {
		p := snap.Part(snap.Pending.Part)
		if p == nil {
			errs = append(errs, ValidationError{
				PartID:   snap.Pending.Part,
				Message:  "pending hole references a part that does not exist",
				Severity: SeverityError,
			})
		} else if _, err := part.HoleOffset(p.Type, snap.Pending.Hole, p.Length); err != nil {
			errs = append(errs, ValidationError{
				PartID:   p.ID,
				Message:  fmt.Sprintf("pending hole: %v", err),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// orphanFastenerRadius is how far a fastener may sit from the nearest
// joint interface before it counts as orphaned. Fasteners are placed
// exactly Thickness from the interface, so twice that is generous.
const orphanFastenerRadius = 2 * part.Thickness

// validateFasteners flags screws and nuts that no longer sit near any
// joint interface. Removing a joined part cascades its joints but
// deliberately leaves the hardware in place, so orphans are warnings,
// not errors.
func validateFasteners(snap Snapshot) []ValidationError {
	var interfaces []v3.Vec
	for i := range snap.Joints {
		j := &snap.Joints[i]
		// Either endpoint works; the interface is the shared hole site.
		p := snap.Part(j.PartA)
		if p == nil {
			continue
		}
		pos, _, err := p.HoleWorld(j.HoleA)
		if err != nil {
			continue
		}
		interfaces = append(interfaces, pos)
	}

	var errs []ValidationError
	for i := range snap.Parts {
		p := &snap.Parts[i]
		if p.Type != part.Screw && p.Type != part.Nut {
			continue
		}
		orphan := true
		for _, c := range interfaces {
			if p.Position.Sub(c).Length() <= orphanFastenerRadius {
				orphan = false
				break
			}
		}
		if orphan {
			errs = append(errs, ValidationError{
				PartID:   p.ID,
				Message:  fmt.Sprintf("%s is not near any joint interface (orphaned hardware)", p.Type),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}
