package update

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/sandeepkv93/remindd/internal/classify"
	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/views"
)

const whenLayout = "2006-01-02 15:04"

// rebuildRows reclassifies the collection and flattens the current view's
// buckets into selectable lines in display order.
func (m *Model) rebuildRows() {
	if m.Store == nil {
		m.rows = nil
		return
	}
	now := m.now()
	result := classify.Classify(m.CurrentView, m.Store.Snapshot(), now, classify.Options{
		WeekStart:    m.WeekStart,
		ShowArchived: m.ShowArchived,
	})

	out := make([]row, 0)
	appendOccs := func(occs []model.Occurrence) {
		for _, occ := range occs {
			out = append(out, row{kind: rowOccurrence, occ: occ})
		}
	}
	appendGroups := func(groups []classify.Group) {
		for _, g := range groups {
			out = append(out, row{kind: rowGroup, group: g})
		}
	}

	switch {
	case result.Today != nil:
		appendGroups(result.Today.PerDayActive)
		appendOccs(result.Today.PastUncompleted)
		appendOccs(result.Today.TodayUncompleted)
		appendOccs(result.Today.CompletedToday)
		appendGroups(result.Today.CompletedPerDay)
	case result.Next != nil:
		appendOccs(result.Next.ThisWeek)
		appendOccs(result.Next.Future)
	case result.Past != nil:
		if result.Past.ShowArchived {
			appendOccs(result.Past.Archived)
		} else {
			appendOccs(result.Past.Today.Regular)
			appendGroups(result.Past.Today.PerDay)
			appendOccs(result.Past.Past.Regular)
			appendGroups(result.Past.Past.PerDay)
			appendOccs(result.Past.Future)
		}
	}

	m.rows = out
	if m.Cursor >= len(m.rows) {
		m.Cursor = len(m.rows) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

func (m Model) selectedRow() (row, bool) {
	if len(m.rows) == 0 || m.Cursor < 0 || m.Cursor >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.Cursor], true
}

func (m Model) renderCurrentView() string {
	now := m.now()
	result := classify.Classify(m.CurrentView, m.Store.Snapshot(), now, classify.Options{
		WeekStart:    m.WeekStart,
		ShowArchived: m.ShowArchived,
	})

	// The cursor walks rows in the same order rebuildRows flattens them, so
	// a running index maps bucket entries back to the selection.
	idx := 0
	items := func(occs []model.Occurrence) []views.ItemData {
		out := make([]views.ItemData, 0, len(occs))
		for _, occ := range occs {
			out = append(out, views.ItemData{
				Title:     occ.Title,
				When:      occ.At.Format(whenLayout),
				Completed: occ.Completed,
				Selected:  idx == m.Cursor,
			})
			idx++
		}
		return out
	}
	groups := func(gs []classify.Group) []views.GroupLineData {
		out := make([]views.GroupLineData, 0, len(gs))
		for _, g := range gs {
			slots := make([]string, 0, 3)
			for _, occ := range g.NextSlots(now, 3) {
				slots = append(slots, occ.At.Format("15:04"))
			}
			out = append(out, views.GroupLineData{
				Title:     g.Title,
				Day:       g.Day.Format("2006-01-02"),
				Completed: g.CompletedCount,
				Total:     g.TotalSlots,
				NextSlots: slots,
				Selected:  idx == m.Cursor,
			})
			idx++
		}
		return out
	}

	switch {
	case result.Today != nil:
		b := result.Today
		return views.RenderTodayPanel(views.TodayPanelData{
			ActiveGroups:    groups(b.PerDayActive),
			PastUncompleted: items(b.PastUncompleted),
			Uncompleted:     items(b.TodayUncompleted),
			CompletedToday:  items(b.CompletedToday),
			CompletedGroups: groups(b.CompletedPerDay),
		})
	case result.Next != nil:
		b := result.Next
		return views.RenderNextPanel(views.NextPanelData{
			ThisWeek: items(b.ThisWeek),
			Future:   items(b.Future),
		})
	case result.Past != nil:
		b := result.Past
		if b.ShowArchived {
			return views.RenderPastPanel(views.PastPanelData{
				ShowArchived: true,
				Archived:     items(b.Archived),
			})
		}
		return views.RenderPastPanel(views.PastPanelData{
			Today:       items(b.Today.Regular),
			TodayGroups: groups(b.Today.PerDay),
			Past:        items(b.Past.Regular),
			PastGroups:  groups(b.Past.PerDay),
			Future:      items(b.Future),
		})
	}
	return ""
}

// renderNotesPane shows the selected reminder's notes as rendered markdown.
func (m Model) renderNotesPane() string {
	sel, ok := m.selectedRow()
	if !ok || sel.kind != rowOccurrence || sel.occ.Notes == "" {
		return ""
	}
	return views.RenderMarkdown("# " + sel.occ.Title + "\n\n" + sel.occ.Notes)
}

func (m *Model) resetCommandInput() {
	m.commandInput = textinput.New()
	m.commandInput.Placeholder = "command"
}

func formatWhen(t time.Time) string {
	return t.Format(whenLayout)
}
