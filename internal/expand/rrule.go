package expand

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/sandeepkv93/remindd/internal/model"
)

var (
	ErrUnsupportedRule = errors.New("expand: unsupported rrule")
	ErrNoRRuleMapping  = errors.New("expand: recurrence has no rrule mapping")
)

var byRRuleWeekday = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

// FromRRule maps a bounded subset of RFC 5545 recurrence rules onto the
// native recurrence type: FREQ DAILY (interval 1 or 2), WEEKLY with or
// without BYDAY, MONTHLY and YEARLY, always with UNTIL. Anything else is
// rejected rather than approximated.
func FromRRule(raw string) (model.Recurrence, error) {
	opt, err := rrule.StrToROption(raw)
	if err != nil {
		return model.Recurrence{}, fmt.Errorf("expand: parse rrule: %w", err)
	}
	if opt.Until.IsZero() {
		return model.Recurrence{}, fmt.Errorf("%w: UNTIL is required", ErrUnsupportedRule)
	}
	if opt.Count > 0 {
		return model.Recurrence{}, fmt.Errorf("%w: COUNT", ErrUnsupportedRule)
	}
	interval := opt.Interval
	if interval == 0 {
		interval = 1
	}

	rec := model.Recurrence{End: opt.Until}
	switch opt.Freq {
	case rrule.DAILY:
		switch interval {
		case 1:
			rec.Type = model.RecurrenceDaily
		case 2:
			rec.Type = model.RecurrenceAlternate
		default:
			return model.Recurrence{}, fmt.Errorf("%w: FREQ=DAILY;INTERVAL=%d", ErrUnsupportedRule, interval)
		}
	case rrule.WEEKLY:
		if interval != 1 {
			return model.Recurrence{}, fmt.Errorf("%w: FREQ=WEEKLY;INTERVAL=%d", ErrUnsupportedRule, interval)
		}
		if len(opt.Byweekday) == 0 {
			rec.Type = model.RecurrenceWeekly
			break
		}
		rec.Type = model.RecurrenceCustom
		rec.Weekdays = make([]time.Weekday, 0, len(opt.Byweekday))
		for _, wd := range opt.Byweekday {
			rec.Weekdays = append(rec.Weekdays, fromRRuleWeekday(wd))
		}
	case rrule.MONTHLY:
		if interval != 1 {
			return model.Recurrence{}, fmt.Errorf("%w: FREQ=MONTHLY;INTERVAL=%d", ErrUnsupportedRule, interval)
		}
		rec.Type = model.RecurrenceMonthly
	case rrule.YEARLY:
		if interval != 1 {
			return model.Recurrence{}, fmt.Errorf("%w: FREQ=YEARLY;INTERVAL=%d", ErrUnsupportedRule, interval)
		}
		rec.Type = model.RecurrenceYearly
	default:
		return model.Recurrence{}, fmt.Errorf("%w: FREQ=%d", ErrUnsupportedRule, int(opt.Freq))
	}

	if err := rec.Validate(); err != nil {
		return model.Recurrence{}, err
	}
	return rec, nil
}

// ToRRule renders a native recurrence as an RFC 5545 rule body. Per-day and
// non-repeating recurrences have no faithful mapping and are rejected.
// Monthly uses the plain FREQ=MONTHLY form; the clamp policy for short
// months is lossy across the boundary.
func ToRRule(rec model.Recurrence) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}

	opt := rrule.ROption{Until: rec.End.UTC()}
	switch rec.Type {
	case model.RecurrenceDaily:
		opt.Freq = rrule.DAILY
	case model.RecurrenceAlternate:
		opt.Freq = rrule.DAILY
		opt.Interval = 2
	case model.RecurrenceWeekly:
		opt.Freq = rrule.WEEKLY
	case model.RecurrenceMonthly:
		opt.Freq = rrule.MONTHLY
	case model.RecurrenceYearly:
		opt.Freq = rrule.YEARLY
	case model.RecurrenceCustom:
		opt.Freq = rrule.WEEKLY
		for _, wd := range rec.SortedWeekdays() {
			opt.Byweekday = append(opt.Byweekday, byRRuleWeekday[wd])
		}
	default:
		return "", fmt.Errorf("%w: %q", ErrNoRRuleMapping, rec.Type)
	}

	r, err := rrule.NewRRule(opt)
	if err != nil {
		return "", fmt.Errorf("expand: build rrule: %w", err)
	}
	return r.String(), nil
}

func fromRRuleWeekday(wd rrule.Weekday) time.Weekday {
	// rrule weekdays are Monday-based (MO=0), time.Weekday is Sunday-based.
	return time.Weekday((wd.Day() + 1) % 7)
}
