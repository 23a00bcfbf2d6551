package ics

import (
	"errors"
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/sandeepkv93/remindd/internal/expand"
	"github.com/sandeepkv93/remindd/internal/model"
)

const productID = "-//remindd//reminder export//EN"

// DefaultEventDuration is used for DTEND; reminders are instants, but many
// calendar clients render zero-length events poorly.
const DefaultEventDuration = 30 * time.Minute

// Export renders the live collection as an iCalendar document. A repeating
// series becomes a single VEVENT carrying an RRULE; per-day series have no
// RRULE mapping, so each of their occurrences is emitted individually.
// Archived occurrences are skipped.
func Export(occs []model.Occurrence, now time.Time) (string, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	seenSeries := make(map[string]bool)
	for _, occ := range occs {
		if occ.Archived {
			continue
		}
		rec := occ.Recurrence
		if rec.Type.Repeats() && rec.Type != model.RecurrencePerDay {
			key := occ.SeriesKey()
			if seenSeries[key] {
				continue
			}
			seenSeries[key] = true
			first := earliestOfSeries(occs, occ)
			if err := addSeriesEvent(cal, first, now); err != nil {
				return "", err
			}
			continue
		}
		addSingleEvent(cal, occ, now)
	}
	return cal.Serialize(), nil
}

func addSeriesEvent(cal *ical.Calendar, occ model.Occurrence, now time.Time) error {
	rule, err := expand.ToRRule(occ.Recurrence)
	if err != nil {
		if errors.Is(err, expand.ErrNoRRuleMapping) {
			addSingleEvent(cal, occ, now)
			return nil
		}
		return fmt.Errorf("series %q: %w", occ.Title, err)
	}
	ev := newEvent(cal, occ, now)
	ev.AddRrule(rule)
	return nil
}

func addSingleEvent(cal *ical.Calendar, occ model.Occurrence, now time.Time) {
	newEvent(cal, occ, now)
}

func newEvent(cal *ical.Calendar, occ model.Occurrence, now time.Time) *ical.VEvent {
	ev := cal.AddEvent(occ.ID + "@remindd")
	ev.SetDtStampTime(now.UTC())
	ev.SetCreatedTime(occ.CreatedAt.UTC())
	ev.SetStartAt(occ.At.UTC())
	ev.SetEndAt(occ.At.Add(DefaultEventDuration).UTC())
	ev.SetSummary(occ.Title)
	if occ.Notes != "" {
		ev.SetDescription(occ.Notes)
	}
	return ev
}

// earliestOfSeries picks the series anchor: the RRULE's DTSTART must be the
// first instant, not whichever occurrence the iteration hit first.
func earliestOfSeries(occs []model.Occurrence, member model.Occurrence) model.Occurrence {
	first := member
	for _, occ := range occs {
		if occ.Archived || !occ.SameSeries(member) {
			continue
		}
		if occ.At.Before(first.At) {
			first = occ
		}
	}
	return first
}
