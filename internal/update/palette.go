package update

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/remindd/internal/classify"
	"github.com/sandeepkv93/remindd/internal/commands"
	"github.com/sandeepkv93/remindd/internal/ics"
	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/notify"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.Palette.Active = false
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Blur()
		m.Status = StatusBar{Text: "command palette closed"}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		m = m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		_ = cmd
		m.Palette.Input = m.commandInput.Value()
	}
	return m
}

func (m Model) executePaletteCommand() Model {
	raw := strings.TrimSpace(m.Palette.Input)
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.Palette.Active = false
		m.Palette.Input = ""
		return m
	}

	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			at, parseErr := parseWhen(a.When)
			if parseErr != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: parseErr.Error()}
			}
			if _, createErr := m.createReminder(a.Title, "", at, model.Recurrence{Type: model.RecurrenceNone}); createErr != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: createErr.Error()}
			}
			return commands.Result{Message: fmt.Sprintf("added reminder: %s", a.Title)}, nil
		},
		Done: func(d commands.DoneArgs) (commands.Result, error) {
			if d.Target != "selected" {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "done supports target: selected"}
			}
			sel, ok := m.selectedRow()
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "nothing selected"}
			}
			m.toggleSelected()
			return commands.Result{Message: fmt.Sprintf("toggled: %s", rowTitle(sel))}, nil
		},
		Archive: func(a commands.ArchiveArgs) (commands.Result, error) {
			if a.Target != "selected" {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "archive supports target: selected"}
			}
			sel, ok := m.selectedRow()
			if !ok || sel.kind != rowOccurrence {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no occurrence selected"}
			}
			if archiveErr := m.Store.Archive(sel.occ.ID, m.now()); archiveErr != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: archiveErr.Error()}
			}
			m.cancelAlarm(sel.occ.ID)
			m.rebuildRows()
			return commands.Result{Message: fmt.Sprintf("archived: %s", sel.occ.Title)}, nil
		},
		Delete: func(d commands.DeleteArgs) (commands.Result, error) {
			if d.Target != "selected" {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "delete supports target: selected"}
			}
			sel, ok := m.selectedRow()
			if !ok || sel.kind != rowOccurrence {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no occurrence selected"}
			}
			removed, removeErr := m.Store.Remove(sel.occ.ID)
			if removeErr != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: removeErr.Error()}
			}
			m.cancelAlarm(sel.occ.ID)
			m.rebuildRows()
			return commands.Result{Message: fmt.Sprintf("deleted %d occurrence(s)", removed)}, nil
		},
		Show: func(s commands.ShowArgs) (commands.Result, error) {
			switch s.Subject {
			case "today":
				m.CurrentView = classify.ViewToday
			case "next":
				m.CurrentView = classify.ViewNext
			case "past":
				m.CurrentView = classify.ViewPast
				m.setShowArchived(false)
			case "archived":
				m.CurrentView = classify.ViewPast
				m.setShowArchived(true)
			}
			m.Cursor = 0
			m.rebuildRows()
			return commands.Result{Message: fmt.Sprintf("show %s", s.Subject)}, nil
		},
		Export: func(e commands.ExportArgs) (commands.Result, error) {
			doc, exportErr := ics.Export(m.Store.Snapshot(), m.now())
			if exportErr != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: exportErr.Error()}
			}
			if writeErr := os.WriteFile(e.Path, []byte(doc), 0o644); writeErr != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: writeErr.Error()}
			}
			return commands.Result{Message: fmt.Sprintf("exported calendar to %s", e.Path)}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.banner(notify.SeverityError, err.Error())
	} else {
		m.Status = StatusBar{Text: res.Message}
		m.banner(notify.SeveritySuccess, res.Message)
	}

	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	return m
}

func rowTitle(r row) string {
	if r.kind == rowGroup {
		return r.group.Title
	}
	return r.occ.Title
}
