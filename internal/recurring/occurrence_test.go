package recurring

import (
	"errors"
	"testing"
)

func TestNextOccurrenceAddsPeriodicity(t *testing.T) {
	t.Parallel()
	s := newSchedule("s1", Monthly, date(2024, 1, 1))

	next, ok, err := NextOccurrence(s)
	if err != nil {
		t.Fatalf("NextOccurrence error: %v", err)
	}
	if !ok {
		t.Fatal("expected a next occurrence")
	}
	if want := date(2024, 1, 31); !next.Equal(want) {
		t.Fatalf("NextOccurrence = %s, want %s", next, want)
	}
	if !s.NextOccurrence.Equal(date(2024, 1, 1)) {
		t.Fatalf("input schedule was modified: %s", s.NextOccurrence)
	}
}

func TestNextOccurrenceComposes(t *testing.T) {
	t.Parallel()
	for _, p := range Supported() {
		s := newSchedule("s1", p, date(2024, 2, 28))
		first, _, err := NextOccurrence(s)
		if err != nil {
			t.Fatalf("NextOccurrence error: %v", err)
		}
		s.NextOccurrence = &first
		second, _, err := NextOccurrence(s)
		if err != nil {
			t.Fatalf("NextOccurrence error: %v", err)
		}
		delta, _ := p.Delta()
		if want := date(2024, 2, 28).Add(2 * delta); !second.Equal(want) {
			t.Fatalf("%s applied twice = %s, want %s", p, second, want)
		}
	}
}

func TestNextOccurrenceUnscheduled(t *testing.T) {
	t.Parallel()
	s := newSchedule("s1", Weekly, date(2024, 1, 1))
	s.NextOccurrence = nil

	_, ok, err := NextOccurrence(s)
	if err != nil {
		t.Fatalf("NextOccurrence error: %v", err)
	}
	if ok {
		t.Fatal("expected no next occurrence for unscheduled schedule")
	}
}

func TestNextOccurrenceInvalidPeriodicity(t *testing.T) {
	t.Parallel()
	s := newSchedule("s1", Periodicity("fortnightly-ish"), date(2024, 1, 1))

	if _, _, err := NextOccurrence(s); !errors.Is(err, ErrInvalidPeriodicity) {
		t.Fatalf("expected ErrInvalidPeriodicity, got %v", err)
	}
}
