package expand

import (
	"errors"
	"time"

	"github.com/sandeepkv93/remindd/internal/model"
)

var ErrNotRepeating = errors.New("expand: recurrence does not repeat")

// Expand materializes a repeating recurrence into ordered instants between
// start and end, inclusive on both sides. now is consulted only by the
// per-day branch to avoid generating already-past slots for the current day.
//
// A window with end before start yields an empty sequence. Non-repeating
// recurrences are not expanded here; the caller creates the single
// occurrence directly.
func Expand(rec model.Recurrence, start, end, now time.Time) ([]time.Time, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	if !rec.Type.Repeats() {
		return nil, ErrNotRepeating
	}
	if end.Before(start) {
		return []time.Time{}, nil
	}

	switch rec.Type {
	case model.RecurrenceDaily:
		return stepDays(start, end, 1), nil
	case model.RecurrenceAlternate:
		return stepDays(start, end, 2), nil
	case model.RecurrenceWeekly:
		return stepDays(start, end, 7), nil
	case model.RecurrenceMonthly:
		return stepMonths(start, end, 1), nil
	case model.RecurrenceYearly:
		return stepMonths(start, end, 12), nil
	case model.RecurrenceCustom:
		return customDays(start, end, rec.SortedWeekdays()), nil
	case model.RecurrencePerDay:
		return perDaySlots(start, end, now, rec.Interval()), nil
	default:
		return nil, ErrNotRepeating
	}
}

func stepDays(start, end time.Time, step int) []time.Time {
	out := make([]time.Time, 0)
	for cursor := start; !cursor.After(end); cursor = cursor.AddDate(0, 0, step) {
		out = append(out, cursor)
	}
	return out
}

// stepMonths keeps the start's day-of-month, clamping to the last valid day
// of shorter target months. Jan 31 + 1 month is Feb 28 (29 in leap years),
// never a rolled-over March date.
func stepMonths(start, end time.Time, step int) []time.Time {
	out := make([]time.Time, 0)
	hour, min, sec := start.Clock()
	day := start.Day()
	loc := start.Location()

	firstOfStart := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, loc)
	for i := 0; ; i += step {
		month := firstOfStart.AddDate(0, i, 0)
		d := day
		if last := lastDayOfMonth(month); d > last {
			d = last
		}
		cursor := time.Date(month.Year(), month.Month(), d, hour, min, sec, start.Nanosecond(), loc)
		if cursor.After(end) {
			return out
		}
		out = append(out, cursor)
	}
}

func lastDayOfMonth(month time.Time) int {
	firstOfNext := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location()).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1).Day()
}

// customDays emits one instant per qualifying weekday at the start's
// time-of-day. From any given day, the next qualifying day is the first
// entry strictly greater than the current weekday; when the week is
// exhausted it wraps to the set's first entry in the following week. The
// start day itself is never emitted.
func customDays(start, end time.Time, days []time.Weekday) []time.Time {
	out := make([]time.Time, 0)
	for cursor := nextCustomDay(start, days); !cursor.After(end); cursor = nextCustomDay(cursor, days) {
		out = append(out, cursor)
	}
	return out
}

func nextCustomDay(from time.Time, days []time.Weekday) time.Time {
	wd := from.Weekday()
	for _, d := range days {
		if d > wd {
			return from.AddDate(0, 0, int(d-wd))
		}
	}
	return from.AddDate(0, 0, 7-int(wd)+int(days[0]))
}

// perDaySlots generates the repeat-within-day sequence: every calendar day
// in the window restarts at the template's wall-clock start time and steps
// by interval until the next step would cross midnight. On the current
// calendar day only, whole intervals are skipped so the first slot is not
// in the past.
func perDaySlots(start, end, now time.Time, interval time.Duration) []time.Time {
	out := make([]time.Time, 0)
	hour, min, sec := start.Clock()
	loc := start.Location()

	day := startOfDay(start)
	lastDay := startOfDay(end)
	today := startOfDay(now)

	for !day.After(lastDay) {
		slot := time.Date(day.Year(), day.Month(), day.Day(), hour, min, sec, 0, loc)
		if day.Equal(today) {
			for slot.Before(now) {
				slot = slot.Add(interval)
			}
		}
		for startOfDay(slot).Equal(day) {
			out = append(out, slot)
			next := slot.Add(interval)
			if !startOfDay(next).Equal(day) {
				break
			}
			slot = next
		}
		day = day.AddDate(0, 0, 1)
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
