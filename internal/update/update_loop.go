package update

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/remindd/internal/classify"
	"github.com/sandeepkv93/remindd/internal/notify"
	"github.com/sandeepkv93/remindd/internal/scheduler"
	"github.com/sandeepkv93/remindd/internal/views"
)

// reclassifyInterval drives the render tick: bucket membership changes as
// now moves, even with no user input.
const reclassifyInterval = 30 * time.Second

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{reclassifyTickCmd()}
	if m.Engine != nil {
		cmds = append(cmds, waitForAlarmCmd(m.Engine.C()))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(typed)
	case ReclassifyTickMsg:
		// Backfill is idempotent, so running it on every tick keeps the
		// current day's per-day slots present without a dedicated timer.
		created, err := m.Store.BackfillPerDay(m.now())
		if err != nil {
			m.fail(err)
		}
		m.scheduleAlarms(created)
		m.rebuildRows()
		return m, reclassifyTickCmd()
	case RefreshMsg:
		m.rebuildRows()
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.banner(notify.SeverityError, typed.Err.Error())
		}
		return m, nil
	case AlarmDueMsg:
		m.onAlarmDue(typed.Event)
		if m.Engine != nil {
			return m, waitForAlarmCmd(m.Engine.C())
		}
		return m, nil
	case MaintenanceDoneMsg:
		m.scheduleAlarms(typed.Created)
		m.rebuildRows()
		if len(typed.Created) > 0 || typed.Purged > 0 {
			m.banner(notify.SeverityInfo, fmt.Sprintf("maintenance: %d slots added, %d archived purged", len(typed.Created), typed.Purged))
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Palette.Active {
		return m.handlePaletteKey(msg), nil
	}
	if m.Form.Active {
		return m.handleFormKey(msg), nil
	}

	switch msg.String() {
	case "/":
		m.Palette.Active = true
		m.Palette.Input = ""
		m.resetCommandInput()
		m.commandInput.Focus()
		return m, nil
	case m.Keys.Today:
		m.CurrentView = classify.ViewToday
		m.Cursor = 0
		m.rebuildRows()
		return m, nil
	case m.Keys.Next:
		m.CurrentView = classify.ViewNext
		m.Cursor = 0
		m.rebuildRows()
		return m, nil
	case m.Keys.Past:
		m.CurrentView = classify.ViewPast
		m.Cursor = 0
		m.rebuildRows()
		return m, nil
	case m.Keys.Add:
		m.Form = defaultFormState()
		m.Form.Active = true
		return m, nil
	case m.Keys.Mode:
		if m.CurrentView == classify.ViewPast {
			m.setShowArchived(!m.ShowArchived)
		}
		return m, nil
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
		return m, nil
	case "down", "j":
		if m.Cursor < len(m.rows)-1 {
			m.Cursor++
		}
		return m, nil
	case m.Keys.Toggle, "x":
		m.toggleSelected()
		return m, nil
	case m.Keys.Archive:
		m.archiveSelected()
		return m, nil
	case m.Keys.Delete:
		m.deleteSelected()
		return m, nil
	case "ctrl+c", m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) setShowArchived(v bool) {
	m.ShowArchived = v
	m.Cursor = 0
	m.rebuildRows()
	if m.OnShowArchivedChange != nil {
		m.OnShowArchivedChange(v)
	}
	if v {
		m.Status = StatusBar{Text: "showing archived"}
	} else {
		m.Status = StatusBar{Text: "showing completed"}
	}
}

func (m *Model) onAlarmDue(ev scheduler.AlarmEvent) {
	m.banner(notify.SeverityInfo, fmt.Sprintf("Due: %s", ev.Title))
	if m.DesktopEnabled && m.Desktop != nil {
		_ = m.Desktop.Send("Reminder due", ev.Title)
	}
	m.rebuildRows()
}

func (m *Model) banner(severity notify.Severity, text string) {
	if m.Banners == nil {
		m.Banners = notify.NewCenter()
	}
	m.Banners.Push(severity, text, m.now())
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	rightPane := ""
	if m.Form.Active {
		rightPane = m.renderForm()
	} else if !m.Palette.Active {
		rightPane = m.renderNotesPane()
	}
	if m.Palette.Active {
		rightPane += views.RenderCommandPalette(true, m.Palette.Input)
	}
	if m.HelpVisible {
		rightPane += "\n" + views.RenderHelpPanel(views.HelpPanelData{
			CurrentView: string(m.CurrentView),
			Bindings: []string{
				"j/k move", "enter done", "A archive", "d delete",
				"a add", "s archived-mode (past)", "/ command", "q quit",
			},
		})
	}

	bannerLine := ""
	if m.Banners != nil {
		if b, ok := m.Banners.Latest(m.now()); ok {
			bannerLine = views.RenderBanner(string(b.Severity), b.Text)
		}
	}

	return views.RenderApp(views.AppData{
		Header:     fmt.Sprintf("remindd | view: %s", m.CurrentView),
		LeftPane:   m.renderCurrentView(),
		RightPane:  rightPane,
		StatusLine: status,
		Banner:     bannerLine,
		Footer: fmt.Sprintf("keys: %s today | %s next | %s past | %s add | / cmd | %s help | %s quit",
			m.Keys.Today, m.Keys.Next, m.Keys.Past, m.Keys.Add, m.Keys.Help, m.Keys.Quit),
	})
}

func reclassifyTickCmd() tea.Cmd {
	return tea.Tick(reclassifyInterval, func(time.Time) tea.Msg { return ReclassifyTickMsg{} })
}

func waitForAlarmCmd(ch <-chan scheduler.AlarmEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return AlarmDueMsg{Event: ev}
	}
}
