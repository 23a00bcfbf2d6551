package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sandeepkv93/remindd/internal/classify"
	"github.com/sandeepkv93/remindd/internal/expand"
	"github.com/sandeepkv93/remindd/internal/model"
)

var (
	ErrNotFound       = errors.New("store: occurrence not found")
	ErrInvalidState   = errors.New("store: invalid occurrence state")
	ErrEndBeforeStart = errors.New("store: recurrence ends before it starts")
)

// ArchiveRetention is how long archived occurrences survive before cleanup.
const ArchiveRetention = 30 * 24 * time.Hour

type EventKind string

const (
	EventCreated   EventKind = "created"
	EventUpdated   EventKind = "updated"
	EventCompleted EventKind = "completed"
	EventArchived  EventKind = "archived"
	EventRemoved   EventKind = "removed"
	EventCleanup   EventKind = "cleanup"
)

// Event describes one applied mutation. Subscribers are invoked after the
// mutation is durably visible in the store, never before.
type Event struct {
	Kind  EventKind
	Title string
	Count int
}

type Subscriber func(Event)

// Template is the creation input: one reminder definition that materializes
// into one occurrence (none) or an atomic batch (repeating).
type Template struct {
	Title      string
	Notes      string
	At         time.Time
	Recurrence model.Recurrence
}

// Store is the in-memory occurrence collection. It assumes a single writer
// at a time; the mutex only guards against overlapping reader/writer calls
// from the render loop.
type Store struct {
	mu    sync.Mutex
	byID  map[string]model.Occurrence
	order []string
	subs  []Subscriber
	newID func() string
}

func New() *Store {
	return &Store{
		byID:  make(map[string]model.Occurrence),
		order: make([]string, 0),
		newID: uuid.NewString,
	}
}

// Subscribe registers an observer for applied mutations. There is no
// unsubscribe: subscribers live as long as the store.
func (s *Store) Subscribe(fn Subscriber) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

func (s *Store) publish(ev Event) {
	for _, fn := range s.subs {
		fn(ev)
	}
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

func (s *Store) Get(id string) (model.Occurrence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	occ, ok := s.byID[id]
	if !ok {
		return model.Occurrence{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return occ, nil
}

// Snapshot returns every occurrence in insertion order. Classification
// relies on this order as the tie-break for equal instants.
func (s *Store) Snapshot() []model.Occurrence {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Occurrence, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Create validates a template and materializes it: one occurrence for a
// non-repeating reminder, an atomic expansion batch otherwise. Nothing is
// inserted when validation or expansion fails.
func (s *Store) Create(tpl Template, now time.Time) ([]model.Occurrence, error) {
	if strings.TrimSpace(tpl.Title) == "" {
		return nil, errors.New("store: template title is required")
	}
	if tpl.At.IsZero() {
		return nil, errors.New("store: template datetime is required")
	}
	if err := tpl.Recurrence.Validate(); err != nil {
		return nil, err
	}

	var instants []time.Time
	if tpl.Recurrence.Type.Repeats() {
		if tpl.Recurrence.End.Before(tpl.At) {
			return nil, fmt.Errorf("%w: end %s before start %s", ErrEndBeforeStart,
				tpl.Recurrence.End.Format(time.RFC3339), tpl.At.Format(time.RFC3339))
		}
		expanded, err := expand.Expand(tpl.Recurrence, tpl.At, tpl.Recurrence.End, now)
		if err != nil {
			return nil, err
		}
		instants = expanded
	} else {
		instants = []time.Time{tpl.At}
	}

	batch := make([]model.Occurrence, 0, len(instants))
	for _, at := range instants {
		batch = append(batch, model.Occurrence{
			ID:         s.newID(),
			Title:      tpl.Title,
			Notes:      tpl.Notes,
			At:         at,
			Recurrence: tpl.Recurrence,
			CreatedAt:  now,
		})
	}
	if err := s.InsertBatch(batch); err != nil {
		return nil, err
	}
	return batch, nil
}

func (s *Store) InsertOne(occ model.Occurrence) error {
	return s.InsertBatch([]model.Occurrence{occ})
}

// InsertBatch inserts all occurrences or none: every element is validated
// before the first one becomes visible to readers.
func (s *Store) InsertBatch(batch []model.Occurrence) error {
	if len(batch) == 0 {
		return nil
	}
	s.mu.Lock()
	for _, occ := range batch {
		if err := occ.Validate(); err != nil {
			s.mu.Unlock()
			return err
		}
		if _, exists := s.byID[occ.ID]; exists {
			s.mu.Unlock()
			return fmt.Errorf("%w: duplicate id %s", ErrInvalidState, occ.ID)
		}
	}
	for _, occ := range batch {
		s.byID[occ.ID] = occ
		s.order = append(s.order, occ.ID)
	}
	s.mu.Unlock()

	s.publish(Event{Kind: EventCreated, Title: batch[0].Title, Count: len(batch)})
	return nil
}

// Patch carries the mutable fields of a direct single-occurrence edit. Nil
// fields are left untouched.
type Patch struct {
	Title *string
	Notes *string
	At    *time.Time
}

func (s *Store) Update(id string, patch Patch) error {
	s.mu.Lock()
	occ, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if occ.Archived {
		s.mu.Unlock()
		return fmt.Errorf("%w: cannot edit archived %s", ErrInvalidState, id)
	}
	next := occ
	if patch.Title != nil {
		next.Title = *patch.Title
	}
	if patch.Notes != nil {
		next.Notes = *patch.Notes
	}
	if patch.At != nil {
		next.At = *patch.At
	}
	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.byID[id] = next
	s.mu.Unlock()

	s.publish(Event{Kind: EventUpdated, Title: next.Title, Count: 1})
	return nil
}

// ToggleCompleted flips completion and reports the new state.
func (s *Store) ToggleCompleted(id string) (bool, error) {
	s.mu.Lock()
	occ, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return false, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if occ.Archived {
		s.mu.Unlock()
		return false, fmt.Errorf("%w: cannot toggle archived %s", ErrInvalidState, id)
	}
	occ.Completed = !occ.Completed
	s.byID[id] = occ
	s.mu.Unlock()

	s.publish(Event{Kind: EventCompleted, Title: occ.Title, Count: 1})
	return occ.Completed, nil
}

// Archive is a one-way transition available only from a completed,
// non-archived state.
func (s *Store) Archive(id string, now time.Time) error {
	s.mu.Lock()
	occ, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if occ.Archived {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s already archived", ErrInvalidState, id)
	}
	if !occ.Completed {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s is not completed", ErrInvalidState, id)
	}
	archivedAt := now
	occ.Archived = true
	occ.ArchivedAt = &archivedAt
	s.byID[id] = occ
	s.mu.Unlock()

	s.publish(Event{Kind: EventArchived, Title: occ.Title, Count: 1})
	return nil
}

// Remove deletes one occurrence; when it belongs to a repeating series it
// also deletes every same-series occurrence at or after its instant
// ("delete this and all future"). The surviving members' recurrence end is
// capped to just before the deleted instant, so backfill never regenerates
// the deleted tail. Returns the number removed.
func (s *Store) Remove(id string) (int, error) {
	s.mu.Lock()
	occ, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return 0, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	doomed := []string{id}
	if occ.Recurrence.Type.Repeats() {
		doomed = doomed[:0]
		for _, otherID := range s.order {
			other := s.byID[otherID]
			if other.SameSeries(occ) && !other.At.Before(occ.At) {
				doomed = append(doomed, otherID)
			}
		}
	}
	for _, d := range doomed {
		delete(s.byID, d)
	}
	if occ.Recurrence.Type.Repeats() {
		cutoff := occ.At.Add(-time.Nanosecond)
		for _, otherID := range s.order {
			other, ok := s.byID[otherID]
			if !ok || !other.SameSeries(occ) || !other.Recurrence.Type.Repeats() {
				continue
			}
			if other.Recurrence.End.After(cutoff) {
				other.Recurrence.End = cutoff
				s.byID[otherID] = other
			}
		}
	}
	s.compactOrder()
	s.mu.Unlock()

	s.publish(Event{Kind: EventRemoved, Title: occ.Title, Count: len(doomed)})
	return len(doomed), nil
}

// CompleteGroup flips every incomplete occurrence of a per-day series on
// one calendar day to completed in a single atomic step. Returns the number
// flipped.
func (s *Store) CompleteGroup(seriesKey string, day time.Time) (int, error) {
	s.mu.Lock()
	flipped := 0
	title := ""
	for _, id := range s.order {
		occ := s.byID[id]
		if occ.Archived || occ.SeriesKey() != seriesKey {
			continue
		}
		if occ.Recurrence.Type != model.RecurrencePerDay || !classify.SameDay(occ.At, day) {
			continue
		}
		title = occ.Title
		if !occ.Completed {
			occ.Completed = true
			s.byID[id] = occ
			flipped++
		}
	}
	s.mu.Unlock()

	if title == "" {
		return 0, fmt.Errorf("%w: series %q on %s", ErrNotFound, seriesKey, day.Format("2006-01-02"))
	}
	if flipped > 0 {
		s.publish(Event{Kind: EventCompleted, Title: title, Count: flipped})
	}
	return flipped, nil
}

// CleanupExpiredArchived purges archived occurrences older than the
// retention window and returns how many were removed.
func (s *Store) CleanupExpiredArchived(now time.Time) int {
	s.mu.Lock()
	removed := 0
	for _, id := range s.order {
		occ := s.byID[id]
		if !occ.Archived || occ.ArchivedAt == nil {
			continue
		}
		if now.Sub(*occ.ArchivedAt) > ArchiveRetention {
			delete(s.byID, id)
			removed++
		}
	}
	s.compactOrder()
	s.mu.Unlock()

	if removed > 0 {
		s.publish(Event{Kind: EventCleanup, Count: removed})
	}
	return removed
}

// BackfillPerDay recomputes the current day's slots for every live per-day
// series and inserts the missing ones, returning the inserted occurrences so
// the caller can arm their alarms. It is idempotent and runs whenever a day
// boundary may have passed; the creation-time skip-forward still applies, so
// no past slot is materialized. The recurrence end is honored as an exact
// instant here: a series whose end was capped by a delete stops regenerating
// at the cap, even mid-day.
func (s *Store) BackfillPerDay(now time.Time) ([]model.Occurrence, error) {
	s.mu.Lock()
	type anchor struct {
		occ model.Occurrence
	}
	anchors := make(map[string]anchor)
	existing := make(map[string]map[time.Time]bool)
	for _, id := range s.order {
		occ := s.byID[id]
		if occ.Recurrence.Type != model.RecurrencePerDay || occ.Archived {
			continue
		}
		key := occ.SeriesKey()
		a, ok := anchors[key]
		if !ok || occ.At.Before(a.occ.At) {
			anchors[key] = anchor{occ: occ}
		}
		if existing[key] == nil {
			existing[key] = make(map[time.Time]bool)
		}
		existing[key][occ.At.UTC()] = true
	}
	s.mu.Unlock()

	today := classify.StartOfDay(now)
	added := make([]model.Occurrence, 0)
	for key, a := range anchors {
		rec := a.occ.Recurrence
		if classify.StartOfDay(rec.End).Before(today) || classify.StartOfDay(a.occ.At).After(today) {
			continue
		}
		dayStart := todayAtClock(today, a.occ.At)
		slots, err := expand.Expand(rec, dayStart, dayStart, now)
		if err != nil {
			return added, err
		}
		batch := make([]model.Occurrence, 0)
		for _, at := range slots {
			if at.After(rec.End) {
				break
			}
			if existing[key][at.UTC()] {
				continue
			}
			batch = append(batch, model.Occurrence{
				ID:         s.newID(),
				Title:      a.occ.Title,
				Notes:      a.occ.Notes,
				At:         at,
				Recurrence: rec,
				CreatedAt:  now,
			})
		}
		if len(batch) == 0 {
			continue
		}
		if err := s.InsertBatch(batch); err != nil {
			return added, err
		}
		added = append(added, batch...)
	}
	return added, nil
}

func todayAtClock(day, from time.Time) time.Time {
	hour, min, sec := from.Clock()
	return time.Date(day.Year(), day.Month(), day.Day(), hour, min, sec, 0, from.Location())
}

// compactOrder drops ids that no longer resolve; callers hold the lock.
func (s *Store) compactOrder() {
	kept := s.order[:0]
	for _, id := range s.order {
		if _, ok := s.byID[id]; ok {
			kept = append(kept, id)
		}
	}
	s.order = kept
}

// Replace swaps the whole collection in one step. Startup load uses it
// after reading the persisted set.
func (s *Store) Replace(occs []model.Occurrence) error {
	byID := make(map[string]model.Occurrence, len(occs))
	order := make([]string, 0, len(occs))
	sorted := make([]model.Occurrence, len(occs))
	copy(sorted, occs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.Before(sorted[j].CreatedAt) })
	for _, occ := range sorted {
		if err := occ.Validate(); err != nil {
			return err
		}
		if _, dup := byID[occ.ID]; dup {
			return fmt.Errorf("%w: duplicate id %s", ErrInvalidState, occ.ID)
		}
		byID[occ.ID] = occ
		order = append(order, occ.ID)
	}

	s.mu.Lock()
	s.byID = byID
	s.order = order
	s.mu.Unlock()
	return nil
}
