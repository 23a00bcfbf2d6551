package model

import (
	"errors"
	"testing"
	"time"
)

func validOccurrence() Occurrence {
	return Occurrence{
		ID:         "occ-1",
		Title:      "Water plants",
		At:         time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC),
		Recurrence: Recurrence{Type: RecurrenceNone},
		CreatedAt:  time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC),
	}
}

func TestOccurrenceValidate(t *testing.T) {
	occ := validOccurrence()
	if err := occ.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	missingTitle := occ
	missingTitle.Title = "  "
	if err := missingTitle.Validate(); err == nil {
		t.Fatal("expected empty title rejected")
	}

	missingAt := occ
	missingAt.At = time.Time{}
	if err := missingAt.Validate(); err == nil {
		t.Fatal("expected zero datetime rejected")
	}

	badRecurrence := occ
	badRecurrence.Recurrence = Recurrence{Type: RecurrencePerDay}
	if err := badRecurrence.Validate(); err == nil {
		t.Fatal("expected invalid recurrence rejected")
	}
}

func TestOccurrenceValidateArchiveInvariants(t *testing.T) {
	archivedAt := time.Date(2026, 2, 10, 18, 0, 0, 0, time.UTC)

	noTimestamp := validOccurrence()
	noTimestamp.Completed = true
	noTimestamp.Archived = true
	if err := noTimestamp.Validate(); err == nil {
		t.Fatal("expected archived without archived_at rejected")
	}

	orphanTimestamp := validOccurrence()
	orphanTimestamp.ArchivedAt = &archivedAt
	if err := orphanTimestamp.Validate(); err == nil {
		t.Fatal("expected archived_at without archived rejected")
	}

	notCompleted := validOccurrence()
	notCompleted.Archived = true
	notCompleted.ArchivedAt = &archivedAt
	if err := notCompleted.Validate(); !errors.Is(err, ErrArchivedNotCompleted) {
		t.Fatalf("expected ErrArchivedNotCompleted, got %v", err)
	}

	ok := validOccurrence()
	ok.Completed = true
	ok.Archived = true
	ok.ArchivedAt = &archivedAt
	if err := ok.Validate(); err != nil {
		t.Fatalf("validate archived: %v", err)
	}
}

func TestOccurrenceSeriesKey(t *testing.T) {
	a := validOccurrence()
	b := validOccurrence()
	b.ID = "occ-2"
	b.At = b.At.AddDate(0, 0, 7)
	if !a.SameSeries(b) {
		t.Fatal("same title must share a series")
	}
	b.Title = "Different"
	if a.SameSeries(b) {
		t.Fatal("different titles must not share a series")
	}
}
