package classify

import (
	"sort"
	"time"

	"github.com/sandeepkv93/remindd/internal/model"
)

type View string

const (
	ViewToday View = "Today"
	ViewNext  View = "Next"
	ViewPast  View = "Past"
)

func (v View) IsValid() bool {
	switch v {
	case ViewToday, ViewNext, ViewPast:
		return true
	default:
		return false
	}
}

// TodayBuckets partitions the collection for the Today view. Every
// occurrence lands in at most one bucket.
type TodayBuckets struct {
	PerDayActive     []Group
	PastUncompleted  []model.Occurrence
	TodayUncompleted []model.Occurrence
	CompletedToday   []model.Occurrence
	CompletedPerDay  []Group
}

// NextBuckets holds upcoming work: uncompleted occurrences from tomorrow on.
type NextBuckets struct {
	ThisWeek []model.Occurrence
	Future   []model.Occurrence
}

// PastPartition splits one date range of the Past view into plain reminders
// and fully-completed per-day groups.
type PastPartition struct {
	Regular []model.Occurrence
	PerDay  []Group
}

type PastBuckets struct {
	ShowArchived bool
	Archived     []model.Occurrence
	Today        PastPartition
	Past         PastPartition
	Future       []model.Occurrence
}

// Result carries the buckets for whichever view was classified.
type Result struct {
	View  View
	Today *TodayBuckets
	Next  *NextBuckets
	Past  *PastBuckets
}

// Options tunes classification; zero value means Sunday-start weeks and
// completed-mode Past view.
type Options struct {
	WeekStart    time.Weekday
	ShowArchived bool
}

// Classify is a pure function of the occurrence collection and now. Bucket
// membership shifts as now crosses day boundaries, so callers re-run it on
// every render tick.
func Classify(view View, occs []model.Occurrence, now time.Time, opts Options) Result {
	switch view {
	case ViewNext:
		b := Next(occs, now, opts.WeekStart)
		return Result{View: view, Next: &b}
	case ViewPast:
		b := Past(occs, now, opts.ShowArchived)
		return Result{View: view, Past: &b}
	default:
		b := Today(occs, now)
		return Result{View: ViewToday, Today: &b}
	}
}

func Today(occs []model.Occurrence, now time.Time) TodayBuckets {
	var out TodayBuckets
	today := StartOfDay(now)
	perDayToday := make([]model.Occurrence, 0)

	for _, occ := range sortedByInstant(occs) {
		if occ.Archived {
			continue
		}
		if occ.Recurrence.Type == model.RecurrencePerDay {
			if SameDay(occ.At, today) {
				perDayToday = append(perDayToday, occ)
			}
			continue
		}
		switch {
		case !occ.Completed && occ.At.Before(today):
			out.PastUncompleted = append(out.PastUncompleted, occ)
		case !occ.Completed && SameDay(occ.At, today):
			out.TodayUncompleted = append(out.TodayUncompleted, occ)
		case occ.Completed && SameDay(occ.At, today):
			out.CompletedToday = append(out.CompletedToday, occ)
		}
	}

	for _, g := range groupPerDay(perDayToday) {
		if g.AllCompleted() {
			out.CompletedPerDay = append(out.CompletedPerDay, g)
		} else {
			out.PerDayActive = append(out.PerDayActive, g)
		}
	}
	return out
}

func Next(occs []model.Occurrence, now time.Time, weekStart time.Weekday) NextBuckets {
	var out NextBuckets
	tomorrow := Tomorrow(now)
	weekEnd := EndOfWeek(StartOfDay(now), weekStart)

	for _, occ := range sortedByInstant(occs) {
		if occ.Archived || occ.Completed || occ.At.Before(tomorrow) {
			continue
		}
		if occ.At.Before(weekEnd) {
			out.ThisWeek = append(out.ThisWeek, occ)
		} else {
			out.Future = append(out.Future, occ)
		}
	}
	return out
}

func Past(occs []model.Occurrence, now time.Time, showArchived bool) PastBuckets {
	out := PastBuckets{ShowArchived: showArchived}
	if showArchived {
		for _, occ := range sortedByInstant(occs) {
			if occ.Archived {
				out.Archived = append(out.Archived, occ)
			}
		}
		return out
	}

	today := StartOfDay(now)
	tomorrow := Tomorrow(now)
	perDayByRange := map[string][]model.Occurrence{}

	for _, occ := range sortedByInstant(occs) {
		if occ.Archived {
			continue
		}
		if occ.Recurrence.Type == model.RecurrencePerDay {
			// Grouped before the completion filter so a partially-completed
			// group never masquerades as done. Future per-day groups have no
			// home in this mode.
			switch {
			case SameDay(occ.At, today):
				perDayByRange["today"] = append(perDayByRange["today"], occ)
			case occ.At.Before(today):
				perDayByRange["past"] = append(perDayByRange["past"], occ)
			}
			continue
		}
		if !occ.Completed {
			continue
		}
		switch {
		case SameDay(occ.At, today):
			out.Today.Regular = append(out.Today.Regular, occ)
		case occ.At.Before(today):
			out.Past.Regular = append(out.Past.Regular, occ)
		case !occ.At.Before(tomorrow):
			out.Future = append(out.Future, occ)
		}
	}

	for _, g := range groupPerDay(perDayByRange["today"]) {
		if g.AllCompleted() {
			out.Today.PerDay = append(out.Today.PerDay, g)
		}
	}
	for _, g := range groupPerDay(perDayByRange["past"]) {
		if g.AllCompleted() {
			out.Past.PerDay = append(out.Past.PerDay, g)
		}
	}
	return out
}

// sortedByInstant orders ascending by datetime with a stable tie-break so
// equal instants keep insertion order.
func sortedByInstant(occs []model.Occurrence) []model.Occurrence {
	out := make([]model.Occurrence, len(occs))
	copy(out, occs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out
}
