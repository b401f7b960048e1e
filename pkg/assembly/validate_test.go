package assembly

import (
	"strings"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"girder/pkg/part"
)

func findingsWith(errs []ValidationError, substr string) []ValidationError {
	var out []ValidationError
	for _, e := range errs {
		if strings.Contains(e.Message, substr) {
			out = append(out, e)
		}
	}
	return out
}

func TestValidateCleanStore(t *testing.T) {
	s := New()
	a := addStrip(t, s, 5, v3.Vec{})
	b := addStrip(t, s, 3, v3.Vec{X: 100})
	mustAssemble(t, s, a, 2, b, 0)

	if errs := Validate(s.Snapshot()); len(errs) != 0 {
		t.Errorf("clean store produced findings: %v", errs)
	}
}

func TestValidatePartInvariants(t *testing.T) {
	snap := Snapshot{Parts: []Part{
		{ID: NewPartID(), Type: part.Strip, Length: 2},
		{ID: NewPartID(), Type: part.CornerBracket, Length: 4},
	}}
	errs := Validate(snap)
	if len(findingsWith(errs, "strip length")) != 1 {
		t.Errorf("missing strip length finding: %v", errs)
	}
	if len(findingsWith(errs, "carries a length")) != 1 {
		t.Errorf("missing bracket length finding: %v", errs)
	}
	for _, e := range errs {
		if e.Severity != SeverityError {
			t.Errorf("part invariant finding should be an error: %v", e)
		}
	}
}

func TestValidateJointInvariants(t *testing.T) {
	strip := Part{ID: NewPartID(), Type: part.Strip, Length: 3}
	screw := Part{ID: NewPartID(), Type: part.Screw}
	missing := NewPartID()

	snap := Snapshot{
		Parts: []Part{strip, screw},
		Joints: []Joint{
			{ID: NewJointID(), PartA: strip.ID, PartB: strip.ID, HoleA: 0, HoleB: 1},
			{ID: NewJointID(), PartA: strip.ID, PartB: missing, HoleA: 0},
			{ID: NewJointID(), PartA: strip.ID, PartB: screw.ID, HoleA: 0},
			{ID: NewJointID(), PartA: strip.ID, PartB: strip.ID, HoleA: 7, HoleB: 0},
		},
	}
	errs := Validate(snap)
	if len(findingsWith(errs, "self-joint")) != 2 {
		t.Errorf("want 2 self-joint findings: %v", errs)
	}
	if len(findingsWith(errs, "does not exist")) != 1 {
		t.Errorf("want 1 missing-endpoint finding: %v", errs)
	}
	if len(findingsWith(errs, "cannot bear joints")) != 1 {
		t.Errorf("want 1 non-structural finding: %v", errs)
	}
	if len(findingsWith(errs, "no hole")) != 1 {
		t.Errorf("want 1 hole-range finding: %v", errs)
	}
}

func TestValidateSelectionReferences(t *testing.T) {
	gone := NewPartID()
	snap := Snapshot{
		SelectedPart: gone,
		Pending:      &HoleRef{Part: gone, Hole: 0},
	}
	errs := Validate(snap)
	if len(findingsWith(errs, "selected part")) != 1 {
		t.Errorf("missing selected-part finding: %v", errs)
	}
	if len(findingsWith(errs, "pending hole")) != 1 {
		t.Errorf("missing pending-hole finding: %v", errs)
	}
}

// Removing a joined part leaves its fasteners behind; Validate reports
// them as warnings, never errors.
func TestValidateOrphanedFasteners(t *testing.T) {
	s := New()
	a := addStrip(t, s, 5, v3.Vec{})
	b := addStrip(t, s, 3, v3.Vec{X: 100})
	mustAssemble(t, s, a, 2, b, 0)
	if err := s.RemovePart(b); err != nil {
		t.Fatal(err)
	}

	errs := Validate(s.Snapshot())
	orphans := findingsWith(errs, "orphaned hardware")
	if len(orphans) != 2 {
		t.Fatalf("want 2 orphan findings (screw and nut), got %v", errs)
	}
	for _, e := range orphans {
		if e.Severity != SeverityWarning {
			t.Errorf("orphan finding should be a warning: %v", e)
		}
	}
}

func TestValidationErrorString(t *testing.T) {
	e := ValidationError{PartID: "0123456789abcdef", Message: "boom", Severity: SeverityWarning}
	got := e.Error()
	if !strings.Contains(got, "warning") || !strings.Contains(got, "01234567") || !strings.Contains(got, "boom") {
		t.Errorf("unexpected rendering: %q", got)
	}
}
