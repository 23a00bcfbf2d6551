package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrArchivedNotCompleted = errors.New("model: archived occurrence must be completed")

// Occurrence is one concrete, dated instance of a reminder. A recurring
// template materializes into a batch of occurrences; each carries the full
// recurrence payload so series-wide operations need no separate series row.
type Occurrence struct {
	ID         string
	Title      string
	Notes      string
	At         time.Time
	Recurrence Recurrence
	Completed  bool
	Archived   bool
	ArchivedAt *time.Time
	CreatedAt  time.Time
}

func (o Occurrence) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return errors.New("model: occurrence id is required")
	}
	if strings.TrimSpace(o.Title) == "" {
		return errors.New("model: occurrence title is required")
	}
	if o.At.IsZero() {
		return errors.New("model: occurrence datetime is required")
	}
	if o.CreatedAt.IsZero() {
		return errors.New("model: occurrence created_at is required")
	}
	if err := o.Recurrence.Validate(); err != nil {
		return err
	}
	if o.Archived != (o.ArchivedAt != nil) {
		return errors.New("model: archived_at must be set iff archived")
	}
	if o.Archived && !o.Completed {
		return fmt.Errorf("%w: %s", ErrArchivedNotCompleted, o.ID)
	}
	return nil
}

// SeriesKey identifies the logical recurring task an occurrence belongs to.
// Identity is title-based today; swapping in a real series id only touches
// this function and its callers.
func (o Occurrence) SeriesKey() string {
	return o.Title
}

// SameSeries reports whether two occurrences belong to one recurring task.
func (o Occurrence) SameSeries(other Occurrence) bool {
	return o.SeriesKey() == other.SeriesKey()
}
