package update

import (
	"fmt"
	"time"

	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/notify"
	"github.com/sandeepkv93/remindd/internal/scheduler"
)

// toggleSelected flips the selected occurrence, or completes the whole
// per-day group when the cursor is on a group line.
func (m *Model) toggleSelected() {
	sel, ok := m.selectedRow()
	if !ok {
		return
	}
	switch sel.kind {
	case rowGroup:
		flipped, err := m.Store.CompleteGroup(sel.group.Title, sel.group.Day)
		if err != nil {
			m.fail(err)
			return
		}
		for _, member := range sel.group.Members {
			m.cancelAlarm(member.ID)
		}
		m.banner(notify.SeveritySuccess, fmt.Sprintf("Completed %q (%d slots)", sel.group.Title, flipped))
	default:
		done, err := m.Store.ToggleCompleted(sel.occ.ID)
		if err != nil {
			m.fail(err)
			return
		}
		if done {
			m.cancelAlarm(sel.occ.ID)
			m.banner(notify.SeveritySuccess, fmt.Sprintf("Completed %q", sel.occ.Title))
		} else {
			m.scheduleAlarms([]model.Occurrence{sel.occ})
			m.banner(notify.SeverityInfo, fmt.Sprintf("Reopened %q", sel.occ.Title))
		}
	}
	m.rebuildRows()
}

func (m *Model) archiveSelected() {
	sel, ok := m.selectedRow()
	if !ok || sel.kind != rowOccurrence {
		return
	}
	if err := m.Store.Archive(sel.occ.ID, m.now()); err != nil {
		m.fail(err)
		return
	}
	m.cancelAlarm(sel.occ.ID)
	m.banner(notify.SeveritySuccess, fmt.Sprintf("Archived %q", sel.occ.Title))
	m.rebuildRows()
}

// deleteSelected removes the occurrence; for a repeating series the store
// also drops every later occurrence of the series.
func (m *Model) deleteSelected() {
	sel, ok := m.selectedRow()
	if !ok || sel.kind != rowOccurrence {
		return
	}
	removed, err := m.Store.Remove(sel.occ.ID)
	if err != nil {
		m.fail(err)
		return
	}
	m.cancelAlarm(sel.occ.ID)
	if removed > 1 {
		m.banner(notify.SeveritySuccess, fmt.Sprintf("Deleted %q and %d later occurrences", sel.occ.Title, removed-1))
	} else {
		m.banner(notify.SeveritySuccess, fmt.Sprintf("Deleted %q", sel.occ.Title))
	}
	m.rebuildRows()
}

// scheduleAlarms registers future occurrences with the alarm engine.
func (m *Model) scheduleAlarms(occs []model.Occurrence) {
	if m.Engine == nil {
		return
	}
	now := m.now()
	for _, occ := range occs {
		if occ.Completed || occ.Archived || !occ.At.After(now) {
			continue
		}
		_ = m.Engine.Schedule(scheduler.AlarmEvent{
			OccurrenceID: occ.ID,
			Title:        occ.Title,
			FireAt:       occ.At,
		})
	}
}

func (m *Model) cancelAlarm(id string) {
	if m.Engine == nil {
		return
	}
	m.Engine.Cancel(id)
}

func (m *Model) fail(err error) {
	m.LastError = err
	m.Status = StatusBar{Text: err.Error(), IsError: true}
	m.banner(notify.SeverityError, err.Error())
}

// createReminder funnels both the form and the palette add command into the
// store, then arms alarms for whatever was materialized.
func (m *Model) createReminder(title, notes string, at time.Time, rec model.Recurrence) (int, error) {
	created, err := m.Store.Create(newTemplate(title, notes, at, rec), m.now())
	if err != nil {
		return 0, err
	}
	m.scheduleAlarms(created)
	m.rebuildRows()
	return len(created), nil
}
