package expand

import (
	"errors"
	"testing"
	"time"

	"github.com/sandeepkv93/remindd/internal/model"
)

func TestFromRRuleDailyVariants(t *testing.T) {
	rec, err := FromRRule("FREQ=DAILY;UNTIL=20260301T090000Z")
	if err != nil {
		t.Fatalf("parse daily: %v", err)
	}
	if rec.Type != model.RecurrenceDaily {
		t.Fatalf("expected daily, got %q", rec.Type)
	}
	if !rec.End.Equal(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end: %s", rec.End)
	}

	rec, err = FromRRule("FREQ=DAILY;INTERVAL=2;UNTIL=20260301T090000Z")
	if err != nil {
		t.Fatalf("parse alternate: %v", err)
	}
	if rec.Type != model.RecurrenceAlternate {
		t.Fatalf("expected alternate, got %q", rec.Type)
	}
}

func TestFromRRuleWeeklyByday(t *testing.T) {
	rec, err := FromRRule("FREQ=WEEKLY;BYDAY=MO,WE;UNTIL=20260301T090000Z")
	if err != nil {
		t.Fatalf("parse weekly byday: %v", err)
	}
	if rec.Type != model.RecurrenceCustom {
		t.Fatalf("expected custom, got %q", rec.Type)
	}
	days := rec.SortedWeekdays()
	if len(days) != 2 || days[0] != time.Monday || days[1] != time.Wednesday {
		t.Fatalf("unexpected weekdays: %v", days)
	}

	rec, err = FromRRule("FREQ=WEEKLY;UNTIL=20260301T090000Z")
	if err != nil {
		t.Fatalf("parse weekly: %v", err)
	}
	if rec.Type != model.RecurrenceWeekly {
		t.Fatalf("expected weekly, got %q", rec.Type)
	}
}

func TestFromRRuleRejectsUnsupported(t *testing.T) {
	cases := []string{
		"FREQ=DAILY", // no UNTIL
		"FREQ=DAILY;COUNT=5;UNTIL=20260301T090000Z",
		"FREQ=DAILY;INTERVAL=3;UNTIL=20260301T090000Z",
		"FREQ=MONTHLY;INTERVAL=2;UNTIL=20260301T090000Z",
	}
	for _, raw := range cases {
		if _, err := FromRRule(raw); !errors.Is(err, ErrUnsupportedRule) {
			t.Fatalf("%s: expected ErrUnsupportedRule, got %v", raw, err)
		}
	}
}

func TestRRuleRoundTrip(t *testing.T) {
	end := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	cases := []model.Recurrence{
		{Type: model.RecurrenceDaily, End: end},
		{Type: model.RecurrenceAlternate, End: end},
		{Type: model.RecurrenceWeekly, End: end},
		{Type: model.RecurrenceMonthly, End: end},
		{Type: model.RecurrenceYearly, End: end},
		{Type: model.RecurrenceCustom, End: end, Weekdays: []time.Weekday{time.Monday, time.Wednesday}},
	}
	for _, rec := range cases {
		raw, err := ToRRule(rec)
		if err != nil {
			t.Fatalf("%s: to rrule: %v", rec.Type, err)
		}
		back, err := FromRRule(raw)
		if err != nil {
			t.Fatalf("%s: parse back %q: %v", rec.Type, raw, err)
		}
		if back.Type != rec.Type {
			t.Fatalf("%s: round trip type %q via %q", rec.Type, back.Type, raw)
		}
		if !back.End.Equal(rec.End) {
			t.Fatalf("%s: round trip end %s via %q", rec.Type, back.End, raw)
		}
		if len(back.SortedWeekdays()) != len(rec.SortedWeekdays()) {
			t.Fatalf("%s: round trip weekdays %v", rec.Type, back.Weekdays)
		}
	}
}

func TestToRRuleRejectsPerDay(t *testing.T) {
	rec := model.Recurrence{
		Type:            model.RecurrencePerDay,
		End:             time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		IntervalMinutes: 30,
	}
	if _, err := ToRRule(rec); !errors.Is(err, ErrNoRRuleMapping) {
		t.Fatalf("expected ErrNoRRuleMapping, got %v", err)
	}
	if _, err := ToRRule(model.Recurrence{Type: model.RecurrenceNone}); !errors.Is(err, ErrNoRRuleMapping) {
		t.Fatalf("expected ErrNoRRuleMapping for none, got %v", err)
	}
}
