package expand

import (
	"errors"
	"testing"
	"time"

	"github.com/sandeepkv93/remindd/internal/model"
)

func at(t *testing.T, value string) time.Time {
	t.Helper()
	out, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	return out
}

func TestExpandDailySevenDayWindow(t *testing.T) {
	start := at(t, "2026-02-09T09:30:00Z")
	end := at(t, "2026-02-15T23:59:00Z")
	rec := model.Recurrence{Type: model.RecurrenceDaily, End: end}

	got, err := Expand(rec, start, end, start)
	if err != nil {
		t.Fatalf("expand daily: %v", err)
	}
	if len(got) != 7 {
		t.Fatalf("expected 7 occurrences, got %d", len(got))
	}
	for i, instant := range got {
		want := start.AddDate(0, 0, i)
		if !instant.Equal(want) {
			t.Fatalf("occurrence %d: got %s want %s", i, instant, want)
		}
		if instant.Hour() != 9 || instant.Minute() != 30 {
			t.Fatalf("occurrence %d lost time-of-day: %s", i, instant)
		}
	}
}

func TestExpandAlternateSpacing(t *testing.T) {
	start := at(t, "2026-02-01T08:00:00Z")
	end := at(t, "2026-02-28T23:00:00Z")
	rec := model.Recurrence{Type: model.RecurrenceAlternate, End: end}

	got, err := Expand(rec, start, end, start)
	if err != nil {
		t.Fatalf("expand alternate: %v", err)
	}
	if len(got) < 2 {
		t.Fatalf("expected multiple occurrences, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if diff := got[i].Sub(got[i-1]); diff != 48*time.Hour {
			t.Fatalf("gap %d: got %s want 48h", i, diff)
		}
	}
}

func TestExpandWeeklyKeepsWeekday(t *testing.T) {
	start := at(t, "2026-02-10T18:00:00Z") // Tuesday
	end := at(t, "2026-03-10T18:00:00Z")
	rec := model.Recurrence{Type: model.RecurrenceWeekly, End: end}

	got, err := Expand(rec, start, end, start)
	if err != nil {
		t.Fatalf("expand weekly: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 occurrences, got %d", len(got))
	}
	for i, instant := range got {
		if instant.Weekday() != time.Tuesday {
			t.Fatalf("occurrence %d not on Tuesday: %s", i, instant)
		}
	}
}

func TestExpandMonthlyClampsShortMonths(t *testing.T) {
	start := at(t, "2026-01-31T10:00:00Z")
	end := at(t, "2026-05-31T23:00:00Z")
	rec := model.Recurrence{Type: model.RecurrenceMonthly, End: end}

	got, err := Expand(rec, start, end, start)
	if err != nil {
		t.Fatalf("expand monthly: %v", err)
	}
	want := []string{"2026-01-31", "2026-02-28", "2026-03-31", "2026-04-30", "2026-05-31"}
	if len(got) != len(want) {
		t.Fatalf("expected %d occurrences, got %d: %v", len(want), len(got), got)
	}
	for i := range got {
		if d := got[i].Format("2006-01-02"); d != want[i] {
			t.Fatalf("occurrence %d: got %s want %s", i, d, want[i])
		}
		if got[i].Hour() != 10 {
			t.Fatalf("occurrence %d lost time-of-day: %s", i, got[i])
		}
	}
}

func TestExpandMonthlyLeapFebruary(t *testing.T) {
	start := at(t, "2028-01-31T10:00:00Z")
	end := at(t, "2028-02-29T23:00:00Z")
	rec := model.Recurrence{Type: model.RecurrenceMonthly, End: end}

	got, err := Expand(rec, start, end, start)
	if err != nil {
		t.Fatalf("expand monthly: %v", err)
	}
	if len(got) != 2 || got[1].Format("2006-01-02") != "2028-02-29" {
		t.Fatalf("expected leap-year clamp to Feb 29, got %v", got)
	}
}

func TestExpandYearly(t *testing.T) {
	start := at(t, "2026-06-15T12:00:00Z")
	end := at(t, "2029-06-15T12:00:00Z")
	rec := model.Recurrence{Type: model.RecurrenceYearly, End: end}

	got, err := Expand(rec, start, end, start)
	if err != nil {
		t.Fatalf("expand yearly: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 occurrences, got %d", len(got))
	}
	for i, instant := range got {
		if instant.Year() != 2026+i || instant.Month() != time.June || instant.Day() != 15 {
			t.Fatalf("occurrence %d: %s", i, instant)
		}
	}
}

func TestExpandCustomWrapsPastCurrentWeek(t *testing.T) {
	start := at(t, "2026-02-12T07:00:00Z") // Thursday
	end := at(t, "2026-02-20T23:00:00Z")
	rec := model.Recurrence{
		Type:     model.RecurrenceCustom,
		End:      end,
		Weekdays: []time.Weekday{time.Monday, time.Wednesday},
	}

	got, err := Expand(rec, start, end, start)
	if err != nil {
		t.Fatalf("expand custom: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 occurrences, got %d: %v", len(got), got)
	}
	// Thursday start must wrap to next Monday, not this week's Wednesday.
	if got[0].Format("2006-01-02") != "2026-02-16" || got[0].Weekday() != time.Monday {
		t.Fatalf("first occurrence: got %s", got[0])
	}
	if got[1].Format("2006-01-02") != "2026-02-18" || got[1].Weekday() != time.Wednesday {
		t.Fatalf("second occurrence: got %s", got[1])
	}
	if got[0].Hour() != 7 {
		t.Fatalf("time-of-day lost: %s", got[0])
	}
}

func TestExpandPerDaySlotRestartAtMidnight(t *testing.T) {
	start := at(t, "2026-02-10T23:00:00Z")
	end := at(t, "2026-02-11T23:59:00Z")
	rec := model.Recurrence{Type: model.RecurrencePerDay, End: end, IntervalMinutes: 45}

	now := at(t, "2026-02-10T22:00:00Z") // before the first slot: no skip
	got, err := Expand(rec, start, end, now)
	if err != nil {
		t.Fatalf("expand per-day: %v", err)
	}
	want := []string{
		"2026-02-10T23:00:00Z",
		"2026-02-10T23:45:00Z",
		// 00:30 would cross midnight: next day restarts at 23:00.
		"2026-02-11T23:00:00Z",
		"2026-02-11T23:45:00Z",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d slots, got %d: %v", len(want), len(got), got)
	}
	for i := range got {
		if !got[i].Equal(at(t, want[i])) {
			t.Fatalf("slot %d: got %s want %s", i, got[i], want[i])
		}
	}
}

func TestExpandPerDaySkipForwardOnCurrentDay(t *testing.T) {
	start := at(t, "2026-02-10T09:00:00Z")
	end := at(t, "2026-02-11T23:00:00Z")
	now := at(t, "2026-02-10T10:07:00Z")
	rec := model.Recurrence{Type: model.RecurrencePerDay, End: end, IntervalMinutes: 30}

	got, err := Expand(rec, start, end, now)
	if err != nil {
		t.Fatalf("expand per-day: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected slots")
	}
	if !got[0].Equal(at(t, "2026-02-10T10:30:00Z")) {
		t.Fatalf("first slot: got %s want 10:30", got[0])
	}
	for _, slot := range got {
		if slot.Day() == 10 && slot.Before(now) {
			t.Fatalf("past slot materialized for the current day: %s", slot)
		}
	}
	// The next day is unaffected by the skip: it restarts at 09:00.
	var firstNextDay time.Time
	for _, slot := range got {
		if slot.Day() == 11 {
			firstNextDay = slot
			break
		}
	}
	if !firstNextDay.Equal(at(t, "2026-02-11T09:00:00Z")) {
		t.Fatalf("next day first slot: got %s want 09:00", firstNextDay)
	}
}

func TestExpandEmptyWindow(t *testing.T) {
	start := at(t, "2026-02-10T09:00:00Z")
	end := at(t, "2026-02-09T09:00:00Z")
	rec := model.Recurrence{Type: model.RecurrenceDaily, End: end}

	got, err := Expand(rec, start, end, start)
	if err != nil {
		t.Fatalf("expand empty window: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty sequence, got %v", got)
	}
}

func TestExpandRejectsInvalidRecurrence(t *testing.T) {
	start := at(t, "2026-02-10T09:00:00Z")
	end := at(t, "2026-02-20T09:00:00Z")

	if _, err := Expand(model.Recurrence{Type: model.RecurrencePerDay, End: end}, start, end, start); !errors.Is(err, model.ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
	if _, err := Expand(model.Recurrence{Type: model.RecurrenceNone}, start, end, start); !errors.Is(err, ErrNotRepeating) {
		t.Fatalf("expected ErrNotRepeating, got %v", err)
	}
}
