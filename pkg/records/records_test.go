package records

import "testing"

func TestField(t *testing.T) {
	t.Parallel()

	r := RawRecord{"a", "", "c"}

	if got := r.Field(0); got != "a" {
		t.Errorf("Field(0)=%q", got)
	}
	if got := r.Field(1); got != "" {
		t.Errorf("Field(1)=%q", got)
	}
	if got := r.Field(2); got != "c" {
		t.Errorf("Field(2)=%q", got)
	}
	// Positions past the end read as empty, never panic.
	if got := r.Field(3); got != "" {
		t.Errorf("Field(3)=%q", got)
	}
	if got := r.Field(100); got != "" {
		t.Errorf("Field(100)=%q", got)
	}
}

func TestFieldNegativeIndex(t *testing.T) {
	t.Parallel()

	r := RawRecord{"a"}
	if got := r.Field(-1); got != "" {
		t.Errorf("Field(-1)=%q", got)
	}
}
