package model

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

type RecurrenceType string

const (
	RecurrenceNone      RecurrenceType = "none"
	RecurrenceDaily     RecurrenceType = "daily"
	RecurrenceAlternate RecurrenceType = "alternate"
	RecurrenceWeekly    RecurrenceType = "weekly"
	RecurrenceMonthly   RecurrenceType = "monthly"
	RecurrenceYearly    RecurrenceType = "yearly"
	RecurrenceCustom    RecurrenceType = "custom"
	RecurrencePerDay    RecurrenceType = "per_day"
)

var (
	ErrInvalidRecurrenceType = errors.New("model: invalid recurrence type")
	ErrInvalidInterval       = errors.New("model: invalid per-day interval")
	ErrEmptyWeekdays         = errors.New("model: custom recurrence requires weekdays")
	ErrEndRequired           = errors.New("model: repeating recurrence requires an end date")
	ErrStrayRecurrenceField  = errors.New("model: recurrence field not allowed for type")
)

func (t RecurrenceType) IsValid() bool {
	switch t {
	case RecurrenceNone, RecurrenceDaily, RecurrenceAlternate, RecurrenceWeekly,
		RecurrenceMonthly, RecurrenceYearly, RecurrenceCustom, RecurrencePerDay:
		return true
	default:
		return false
	}
}

// Repeats reports whether the type produces more than one occurrence.
func (t RecurrenceType) Repeats() bool {
	return t.IsValid() && t != RecurrenceNone
}

// Recurrence is a tagged union: Type selects the variant, and only the
// payload fields belonging to that variant may be set. End is the inclusive
// expansion bound and is required for every repeating variant.
type Recurrence struct {
	Type            RecurrenceType
	End             time.Time      // repeating variants only
	Weekdays        []time.Weekday // custom only
	IntervalMinutes int            // per_day only
}

func (r Recurrence) Validate() error {
	if !r.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidRecurrenceType, r.Type)
	}
	if r.Type.Repeats() {
		if r.End.IsZero() {
			return fmt.Errorf("%w: %q", ErrEndRequired, r.Type)
		}
	} else if !r.End.IsZero() {
		return fmt.Errorf("%w: end on %q", ErrStrayRecurrenceField, r.Type)
	}

	if r.Type == RecurrenceCustom {
		if len(r.Weekdays) == 0 {
			return ErrEmptyWeekdays
		}
		seen := make(map[time.Weekday]bool, len(r.Weekdays))
		for _, d := range r.Weekdays {
			if d < time.Sunday || d > time.Saturday {
				return fmt.Errorf("%w: weekday %d out of range", ErrStrayRecurrenceField, d)
			}
			if seen[d] {
				return errors.New("model: duplicate weekday in recurrence")
			}
			seen[d] = true
		}
	} else if len(r.Weekdays) > 0 {
		return fmt.Errorf("%w: weekdays on %q", ErrStrayRecurrenceField, r.Type)
	}

	if r.Type == RecurrencePerDay {
		if r.IntervalMinutes <= 0 {
			return fmt.Errorf("%w: %d", ErrInvalidInterval, r.IntervalMinutes)
		}
	} else if r.IntervalMinutes != 0 {
		return fmt.Errorf("%w: interval on %q", ErrStrayRecurrenceField, r.Type)
	}
	return nil
}

// SortedWeekdays returns the custom weekday set in ascending order without
// mutating the receiver.
func (r Recurrence) SortedWeekdays() []time.Weekday {
	out := make([]time.Weekday, len(r.Weekdays))
	copy(out, r.Weekdays)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Interval returns the per-day slot step.
func (r Recurrence) Interval() time.Duration {
	return time.Duration(r.IntervalMinutes) * time.Minute
}
