package views

import (
	"fmt"
	"strings"
)

type ItemData struct {
	Title     string
	When      string
	Completed bool
	Selected  bool
}

type GroupLineData struct {
	Title     string
	Day       string
	Completed int
	Total     int
	NextSlots []string
	Selected  bool
}

type TodayPanelData struct {
	ActiveGroups    []GroupLineData
	PastUncompleted []ItemData
	Uncompleted     []ItemData
	CompletedToday  []ItemData
	CompletedGroups []GroupLineData
}

type NextPanelData struct {
	ThisWeek []ItemData
	Future   []ItemData
}

type PastPanelData struct {
	ShowArchived bool
	Archived     []ItemData
	Today        []ItemData
	TodayGroups  []GroupLineData
	Past         []ItemData
	PastGroups   []GroupLineData
	Future       []ItemData
}

type FormData struct {
	Active         bool
	TitleView      string
	WhenView       string
	NotesView      string
	RecurrenceType string
	RecurrenceEnd  string
	Weekdays       string
	Interval       string
	FieldLabel     string
	ErrorText      string
	Preview        []string
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
}

func RenderTodayPanel(data TodayPanelData) string {
	var b strings.Builder
	b.WriteString("today:\n")
	b.WriteString("actions: [j/k]move [enter]done [A]archive [d]delete [a]add\n")
	renderGroupSection(&b, "Repeating", data.ActiveGroups)
	renderItemSection(&b, "Overdue", data.PastUncompleted)
	renderItemSection(&b, "Due Today", data.Uncompleted)
	renderItemSection(&b, "Completed", data.CompletedToday)
	renderGroupSection(&b, "Completed Repeating", data.CompletedGroups)
	return strings.TrimSpace(b.String())
}

func RenderNextPanel(data NextPanelData) string {
	var b strings.Builder
	b.WriteString("next:\n")
	b.WriteString("actions: [j/k]move [d]delete [a]add\n")
	renderItemSection(&b, "This Week", data.ThisWeek)
	renderItemSection(&b, "Later", data.Future)
	return strings.TrimSpace(b.String())
}

func RenderPastPanel(data PastPanelData) string {
	var b strings.Builder
	b.WriteString("past:\n")
	if data.ShowArchived {
		b.WriteString("mode: archived | actions: [s]completed [d]delete\n")
		renderItemSection(&b, "Archived", data.Archived)
		return strings.TrimSpace(b.String())
	}
	b.WriteString("mode: completed | actions: [s]archived [A]archive [d]delete\n")
	renderItemSection(&b, "Today", data.Today)
	renderGroupSection(&b, "Today Repeating", data.TodayGroups)
	renderItemSection(&b, "Earlier", data.Past)
	renderGroupSection(&b, "Earlier Repeating", data.PastGroups)
	renderItemSection(&b, "Completed Early", data.Future)
	return strings.TrimSpace(b.String())
}

func RenderForm(data FormData) string {
	if !data.Active {
		return ""
	}
	var b strings.Builder
	b.WriteString("new reminder:\n")
	b.WriteString("keys: [tab]field [enter]save [esc]cancel\n")
	b.WriteString(fmt.Sprintf("field: %s\n", data.FieldLabel))
	b.WriteString(fmt.Sprintf("title: %s\n", data.TitleView))
	b.WriteString(fmt.Sprintf("when: %s\n", data.WhenView))
	b.WriteString(fmt.Sprintf("notes: %s\n", data.NotesView))
	b.WriteString(fmt.Sprintf("repeat: %s\n", data.RecurrenceType))
	if data.RecurrenceEnd != "" {
		b.WriteString(fmt.Sprintf("until: %s\n", data.RecurrenceEnd))
	}
	if data.Weekdays != "" {
		b.WriteString(fmt.Sprintf("weekdays: %s\n", data.Weekdays))
	}
	if data.Interval != "" {
		b.WriteString(fmt.Sprintf("every: %s min\n", data.Interval))
	}
	if data.ErrorText != "" {
		b.WriteString("error: " + data.ErrorText + "\n")
	}
	if len(data.Preview) > 0 {
		b.WriteString("preview:\n")
		for _, item := range data.Preview {
			b.WriteString("- " + item + "\n")
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderBanner(severity, text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return fmt.Sprintf("[%s] %s", strings.ToUpper(severity), text)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\nview: %s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
	)
}

func renderItemSection(b *strings.Builder, title string, items []ItemData) {
	b.WriteString(fmt.Sprintf("\n%s:\n", title))
	if len(items) == 0 {
		b.WriteString("  (none)\n")
		return
	}
	for _, item := range items {
		cursor := " "
		if item.Selected {
			cursor = ">"
		}
		mark := "[ ]"
		if item.Completed {
			mark = "[x]"
		}
		b.WriteString(fmt.Sprintf("%s %s %s", cursor, mark, item.Title))
		if item.When != "" {
			b.WriteString(fmt.Sprintf(" @%s", item.When))
		}
		b.WriteString("\n")
	}
}

func renderGroupSection(b *strings.Builder, title string, groups []GroupLineData) {
	if len(groups) == 0 {
		return
	}
	b.WriteString(fmt.Sprintf("\n%s:\n", title))
	for _, g := range groups {
		cursor := " "
		if g.Selected {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("%s %s (%d/%d)", cursor, g.Title, g.Completed, g.Total))
		if len(g.NextSlots) > 0 {
			b.WriteString(" next: " + strings.Join(g.NextSlots, ", "))
		}
		b.WriteString("\n")
	}
}
