package classify

import (
	"sort"
	"time"

	"github.com/sandeepkv93/remindd/internal/model"
)

// Group is the per-day aggregation of one repeat-within-day reminder: all
// same-title occurrences on one calendar day, treated as a single unit of
// completion.
type Group struct {
	Title string
	Day   time.Time
	// TotalSlots is recomputed from the interval and the day's bounds, not
	// just the member count: an occurrence set may still be catching up.
	TotalSlots     int
	CompletedCount int
	Members        []model.Occurrence
}

func (g Group) AllCompleted() bool {
	if len(g.Members) == 0 {
		return false
	}
	for _, occ := range g.Members {
		if !occ.Completed {
			return false
		}
	}
	return true
}

// NextSlots surfaces the next n slots of the group: every member that is
// incomplete or already in the past, ascending by instant.
func (g Group) NextSlots(now time.Time, n int) []model.Occurrence {
	out := make([]model.Occurrence, 0, n)
	for _, occ := range g.Members {
		if !occ.Completed || occ.At.Before(now) {
			out = append(out, occ)
		}
		if len(out) == n {
			break
		}
	}
	return out
}

// AggregateDay builds the group for one title on one calendar day. Members
// must share title and day; order is normalized here.
func AggregateDay(members []model.Occurrence) Group {
	if len(members) == 0 {
		return Group{}
	}
	sorted := make([]model.Occurrence, len(members))
	copy(sorted, members)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At.Before(sorted[j].At) })

	g := Group{
		Title:   sorted[0].Title,
		Day:     StartOfDay(sorted[0].At),
		Members: sorted,
	}
	for _, occ := range sorted {
		if occ.Completed {
			g.CompletedCount++
		}
	}
	g.TotalSlots = expectedSlots(sorted[0].At, sorted[0].Recurrence.Interval())
	if g.TotalSlots < len(sorted) {
		g.TotalSlots = len(sorted)
	}
	return g
}

// expectedSlots counts interval steps from the day's first slot until the
// next midnight, anchored on the earliest known member.
func expectedSlots(first time.Time, interval time.Duration) int {
	if interval <= 0 {
		return 0
	}
	nextDay := StartOfDay(first).AddDate(0, 0, 1)
	return int(nextDay.Sub(first)-time.Nanosecond)/int(interval) + 1
}

// groupPerDay buckets per-day occurrences by series and calendar day.
func groupPerDay(occs []model.Occurrence) []Group {
	type key struct {
		series string
		day    time.Time
	}
	index := make(map[key]int)
	order := make([]key, 0)
	byKey := make(map[key][]model.Occurrence)
	for _, occ := range occs {
		k := key{series: occ.SeriesKey(), day: StartOfDay(occ.At)}
		if _, seen := index[k]; !seen {
			index[k] = len(order)
			order = append(order, k)
		}
		byKey[k] = append(byKey[k], occ)
	}

	out := make([]Group, 0, len(order))
	for _, k := range order {
		out = append(out, AggregateDay(byKey[k]))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Day.Equal(out[j].Day) {
			return out[i].Day.Before(out[j].Day)
		}
		return out[i].Members[0].At.Before(out[j].Members[0].At)
	})
	return out
}
