package update

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/remindd/internal/classify"
	"github.com/sandeepkv93/remindd/internal/clock"
	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/scheduler"
	"github.com/sandeepkv93/remindd/internal/store"
)

func fixedNow(t *testing.T) time.Time {
	t.Helper()
	return time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	m := NewModel(store.New())
	m.Clock = clock.Fixed{T: fixedNow(t)}
	m.rebuildRows()
	return m
}

func seedReminder(t *testing.T, m *Model, title string, at time.Time) model.Occurrence {
	t.Helper()
	created, err := m.Store.Create(store.Template{
		Title:      title,
		At:         at,
		Recurrence: model.Recurrence{Type: model.RecurrenceNone},
	}, fixedNow(t))
	if err != nil {
		t.Fatalf("seed %q: %v", title, err)
	}
	m.rebuildRows()
	return created[0]
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModelDefaults(t *testing.T) {
	m := newTestModel(t)
	if m.CurrentView != classify.ViewToday {
		t.Fatalf("expected default view %q, got %q", classify.ViewToday, m.CurrentView)
	}
	if m.Keys.Quit != "q" || m.Keys.Add != "a" {
		t.Fatalf("unexpected key map: %+v", m.Keys)
	}
}

func TestUpdateKeySwitchesView(t *testing.T) {
	m := newTestModel(t)
	updated, _ := m.Update(keyRunes("2"))
	next := updated.(Model)
	if next.CurrentView != classify.ViewNext {
		t.Fatalf("expected Next view, got %q", next.CurrentView)
	}

	updated, _ = next.Update(keyRunes("3"))
	next = updated.(Model)
	if next.CurrentView != classify.ViewPast {
		t.Fatalf("expected Past view, got %q", next.CurrentView)
	}
}

func TestUpdateStatusAndError(t *testing.T) {
	m := newTestModel(t)
	updated, _ := m.Update(SetStatusMsg{Text: "ready"})
	next := updated.(Model)
	if next.Status.Text != "ready" || next.Status.IsError {
		t.Fatalf("unexpected status: %+v", next.Status)
	}

	updated, _ = next.Update(AppErrorMsg{Err: errors.New("boom")})
	next = updated.(Model)
	if next.LastError == nil || !next.Status.IsError {
		t.Fatalf("error not recorded: %+v", next.Status)
	}
}

func TestUpdateQuitKey(t *testing.T) {
	m := newTestModel(t)
	updated, cmd := m.Update(keyRunes("q"))
	next := updated.(Model)
	if !next.Quitting {
		t.Fatal("expected quitting flag true")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestToggleCompletesSelected(t *testing.T) {
	m := newTestModel(t)
	occ := seedReminder(t, &m, "Water the plants", time.Date(2026, 2, 10, 15, 0, 0, 0, time.UTC))

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	next := updated.(Model)

	got, err := next.Store.Get(occ.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Completed {
		t.Fatal("expected occurrence completed after enter")
	}
	if b, ok := next.Banners.Latest(fixedNow(t)); !ok || !strings.Contains(b.Text, "Completed") {
		t.Fatalf("expected completion banner, got %#v %v", b, ok)
	}
}

func TestArchiveRequiresCompleted(t *testing.T) {
	m := newTestModel(t)
	seedReminder(t, &m, "Pay rent", time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC))

	updated, _ := m.Update(keyRunes("A"))
	next := updated.(Model)
	if !next.Status.IsError {
		t.Fatalf("archiving uncompleted must error, got %+v", next.Status)
	}

	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	next = updated.(Model)
	updated, _ = next.Update(keyRunes("A"))
	next = updated.(Model)
	snap := next.Store.Snapshot()
	if len(snap) != 1 || !snap[0].Archived {
		t.Fatalf("expected archived occurrence, got %#v", snap)
	}
}

func TestDeleteRemovesSeries(t *testing.T) {
	m := newTestModel(t)
	_, err := m.Store.Create(store.Template{
		Title: "Daily walk",
		At:    time.Date(2026, 2, 10, 18, 0, 0, 0, time.UTC),
		Recurrence: model.Recurrence{
			Type: model.RecurrenceDaily,
			End:  time.Date(2026, 2, 14, 18, 0, 0, 0, time.UTC),
		},
	}, fixedNow(t))
	if err != nil {
		t.Fatalf("seed series: %v", err)
	}
	m.rebuildRows()

	updated, _ := m.Update(keyRunes("d"))
	next := updated.(Model)
	if next.Store.Len() != 0 {
		t.Fatalf("deleting the first occurrence must drop the series, %d left", next.Store.Len())
	}
}

func TestFormCreatesReminder(t *testing.T) {
	m := newTestModel(t)
	updated, _ := m.Update(keyRunes("a"))
	next := updated.(Model)
	if !next.Form.Active {
		t.Fatal("expected form active")
	}

	updated, _ = next.Update(keyRunes("Dentist"))
	next = updated.(Model)
	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyTab})
	next = updated.(Model)
	updated, _ = next.Update(keyRunes("2026-03-01 09:00"))
	next = updated.(Model)
	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	next = updated.(Model)

	if next.Form.Active {
		t.Fatalf("form still active, err=%q", next.Form.Err)
	}
	if next.Store.Len() != 1 {
		t.Fatalf("expected 1 occurrence, got %d", next.Store.Len())
	}
	got := next.Store.Snapshot()[0]
	if got.Title != "Dentist" {
		t.Fatalf("unexpected title: %q", got.Title)
	}
}

func TestFormParseValidation(t *testing.T) {
	f := FormState{Title: "x", When: "not a date"}
	if _, _, _, _, err := f.parse(); err == nil {
		t.Fatal("expected datetime parse error")
	}

	f = FormState{Title: "x", When: "2026-03-01 09:00", Repeat: model.RecurrenceDaily}
	if _, _, _, _, err := f.parse(); err == nil {
		t.Fatal("expected missing until error")
	}

	f = FormState{
		Title: "x", When: "2026-03-01 09:00",
		Repeat: model.RecurrenceCustom, Until: "2026-04-01 09:00", Weekdays: "mon,fri",
	}
	_, _, _, rec, err := f.parse()
	if err != nil {
		t.Fatalf("parse custom: %v", err)
	}
	if len(rec.Weekdays) != 2 || rec.Weekdays[0] != time.Monday {
		t.Fatalf("unexpected weekdays: %#v", rec.Weekdays)
	}

	f = FormState{
		Title: "x", When: "2026-03-01 09:00",
		Repeat: model.RecurrencePerDay, Until: "2026-03-01 21:00", Interval: "45",
	}
	_, _, _, rec, err = f.parse()
	if err != nil {
		t.Fatalf("parse per-day: %v", err)
	}
	if rec.IntervalMinutes != 45 {
		t.Fatalf("unexpected interval: %d", rec.IntervalMinutes)
	}
}

func TestShowArchivedToggle(t *testing.T) {
	m := newTestModel(t)
	persisted := []bool{}
	m.OnShowArchivedChange = func(v bool) { persisted = append(persisted, v) }

	updated, _ := m.Update(keyRunes("3"))
	next := updated.(Model)
	updated, _ = next.Update(keyRunes("s"))
	next = updated.(Model)
	if !next.ShowArchived {
		t.Fatal("expected archived mode on")
	}
	updated, _ = next.Update(keyRunes("s"))
	next = updated.(Model)
	if next.ShowArchived {
		t.Fatal("expected archived mode off")
	}
	if len(persisted) != 2 || persisted[0] != true || persisted[1] != false {
		t.Fatalf("persistence hook calls: %#v", persisted)
	}
}

func TestPaletteAddCommand(t *testing.T) {
	m := newTestModel(t)
	updated, _ := m.Update(keyRunes("/"))
	next := updated.(Model)
	if !next.Palette.Active {
		t.Fatal("expected palette active")
	}

	updated, _ = next.Update(keyRunes("add pay rent @ 2026-03-01 09:00"))
	next = updated.(Model)
	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	next = updated.(Model)

	if next.Palette.Active {
		t.Fatal("palette should close after execute")
	}
	if next.Store.Len() != 1 {
		t.Fatalf("expected 1 occurrence from palette add, got %d (status %+v)", next.Store.Len(), next.Status)
	}
	if next.Store.Snapshot()[0].Title != "pay rent" {
		t.Fatalf("unexpected title: %q", next.Store.Snapshot()[0].Title)
	}
}

func TestPaletteShowArchivedCommand(t *testing.T) {
	m := newTestModel(t)
	updated, _ := m.Update(keyRunes("/"))
	next := updated.(Model)
	updated, _ = next.Update(keyRunes("show archived"))
	next = updated.(Model)
	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	next = updated.(Model)

	if next.CurrentView != classify.ViewPast || !next.ShowArchived {
		t.Fatalf("expected Past archived mode, got %q archived=%v", next.CurrentView, next.ShowArchived)
	}
}

func TestViewContainsCoreState(t *testing.T) {
	m := newTestModel(t)
	m.Status = StatusBar{Text: "all good"}
	out := m.View()
	if !strings.Contains(out, "view: Today") {
		t.Fatalf("expected view text in output: %q", out)
	}
	if !strings.Contains(out, "status: all good") {
		t.Fatalf("expected status in output: %q", out)
	}
}

func TestTickArmsAlarmsForBackfilledSlots(t *testing.T) {
	m := newTestModel(t)
	m.Engine = scheduler.NewEngine(8)

	// A per-day series persisted with only its first slot: the tick's
	// backfill must restore the rest of the day and arm each new slot.
	seed := model.Occurrence{
		ID:    "hydrate-13",
		Title: "Hydrate",
		At:    time.Date(2026, 2, 10, 13, 0, 0, 0, time.UTC),
		Recurrence: model.Recurrence{
			Type:            model.RecurrencePerDay,
			End:             time.Date(2026, 2, 10, 23, 0, 0, 0, time.UTC),
			IntervalMinutes: 120,
		},
		CreatedAt: fixedNow(t),
	}
	if err := m.Store.Replace([]model.Occurrence{seed}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	updated, _ := m.Update(ReclassifyTickMsg{})
	next := updated.(Model)

	if next.Store.Len() != 6 {
		t.Fatalf("expected 6 slots after backfill, got %d", next.Store.Len())
	}
	if got := m.Engine.Pending(); got != 5 {
		t.Fatalf("expected 5 alarms armed for backfilled slots, got %d", got)
	}
}

func TestMaintenanceMsgArmsAlarms(t *testing.T) {
	m := newTestModel(t)
	m.Engine = scheduler.NewEngine(8)

	created := model.Occurrence{
		ID:         "walk-18",
		Title:      "Evening walk",
		At:         time.Date(2026, 2, 10, 18, 0, 0, 0, time.UTC),
		Recurrence: model.Recurrence{Type: model.RecurrenceNone},
		CreatedAt:  fixedNow(t),
	}
	updated, _ := m.Update(MaintenanceDoneMsg{Created: []model.Occurrence{created}, Purged: 2})
	next := updated.(Model)

	if got := m.Engine.Pending(); got != 1 {
		t.Fatalf("expected 1 alarm armed, got %d", got)
	}
	b, ok := next.Banners.Latest(fixedNow(t))
	if !ok || !strings.Contains(b.Text, "maintenance") {
		t.Fatalf("expected maintenance banner, got %#v %v", b, ok)
	}
}

func TestReclassifyTickRebuildsRows(t *testing.T) {
	m := newTestModel(t)
	seedReminder(t, &m, "Check oven", time.Date(2026, 2, 10, 13, 0, 0, 0, time.UTC))
	m.rows = nil

	updated, cmd := m.Update(ReclassifyTickMsg{})
	next := updated.(Model)
	if len(next.rows) != 1 {
		t.Fatalf("expected rows rebuilt, got %d", len(next.rows))
	}
	if cmd == nil {
		t.Fatal("expected tick rescheduled")
	}
}
