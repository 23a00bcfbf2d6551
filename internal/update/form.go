package update

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/remindd/internal/expand"
	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/notify"
	"github.com/sandeepkv93/remindd/internal/store"
	"github.com/sandeepkv93/remindd/internal/views"
)

var repeatCycle = []model.RecurrenceType{
	model.RecurrenceNone,
	model.RecurrenceDaily,
	model.RecurrenceAlternate,
	model.RecurrenceWeekly,
	model.RecurrenceMonthly,
	model.RecurrenceYearly,
	model.RecurrenceCustom,
	model.RecurrencePerDay,
}

func (m Model) handleFormKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.Form = defaultFormState()
		m.Status = StatusBar{Text: "add cancelled"}
		return m
	case "tab":
		m.Form.Field = (m.Form.Field + 1) % fieldCount
		return m
	case "shift+tab":
		m.Form.Field = (m.Form.Field + fieldCount - 1) % fieldCount
		return m
	case "enter":
		return m.submitForm()
	case "backspace":
		m.editFormField(func(s string) string {
			if len(s) == 0 {
				return s
			}
			return s[:len(s)-1]
		})
		return m
	case " ":
		if m.Form.Field == FieldRepeat {
			m.cycleRepeat()
			return m
		}
		m.editFormField(func(s string) string { return s + " " })
		return m
	default:
		if msg.Type == tea.KeyRunes {
			if m.Form.Field == FieldRepeat {
				m.cycleRepeat()
				return m
			}
			runes := string(msg.Runes)
			m.editFormField(func(s string) string { return s + runes })
		}
		return m
	}
}

func (m *Model) cycleRepeat() {
	for i, t := range repeatCycle {
		if t == m.Form.Repeat {
			m.Form.Repeat = repeatCycle[(i+1)%len(repeatCycle)]
			m.refreshFormPreview()
			return
		}
	}
	m.Form.Repeat = model.RecurrenceNone
}

func (m *Model) editFormField(edit func(string) string) {
	switch m.Form.Field {
	case FieldTitle:
		m.Form.Title = edit(m.Form.Title)
	case FieldWhen:
		m.Form.When = edit(m.Form.When)
	case FieldNotes:
		m.Form.Notes = edit(m.Form.Notes)
	case FieldUntil:
		m.Form.Until = edit(m.Form.Until)
	case FieldWeekdays:
		m.Form.Weekdays = edit(m.Form.Weekdays)
	case FieldInterval:
		m.Form.Interval = edit(m.Form.Interval)
	}
	m.refreshFormPreview()
}

func (m Model) submitForm() Model {
	title, notes, at, rec, err := m.Form.parse()
	if err != nil {
		m.Form.Err = err.Error()
		return m
	}
	count, err := m.createReminder(title, notes, at, rec)
	if err != nil {
		m.Form.Err = err.Error()
		return m
	}
	m.Form = defaultFormState()
	if count > 1 {
		m.banner(notify.SeveritySuccess, fmt.Sprintf("Created %q (%d occurrences)", title, count))
	} else {
		m.banner(notify.SeveritySuccess, fmt.Sprintf("Created %q", title))
	}
	return m
}

// parse turns raw form text into a creation template, reporting the first
// problem it hits.
func (f FormState) parse() (title, notes string, at time.Time, rec model.Recurrence, err error) {
	title = strings.TrimSpace(f.Title)
	if title == "" {
		return "", "", time.Time{}, model.Recurrence{}, fmt.Errorf("title is required")
	}
	at, err = parseWhen(f.When)
	if err != nil {
		return "", "", time.Time{}, model.Recurrence{}, err
	}
	notes = strings.TrimSpace(f.Notes)

	rec = model.Recurrence{Type: f.Repeat}
	if f.Repeat.Repeats() {
		rec.End, err = parseWhen(f.Until)
		if err != nil {
			return "", "", time.Time{}, model.Recurrence{}, fmt.Errorf("until: %w", err)
		}
	}
	if f.Repeat == model.RecurrenceCustom {
		rec.Weekdays, err = parseWeekdays(f.Weekdays)
		if err != nil {
			return "", "", time.Time{}, model.Recurrence{}, err
		}
	}
	if f.Repeat == model.RecurrencePerDay {
		v, convErr := strconv.Atoi(strings.TrimSpace(f.Interval))
		if convErr != nil || v <= 0 {
			return "", "", time.Time{}, model.Recurrence{}, fmt.Errorf("interval must be a positive number of minutes")
		}
		rec.IntervalMinutes = v
	}
	if err = rec.Validate(); err != nil {
		return "", "", time.Time{}, model.Recurrence{}, err
	}
	return title, notes, at, rec, nil
}

// refreshFormPreview recomputes the first few expansion instants; parse
// failures clear the preview silently since the form may be mid-edit.
func (m *Model) refreshFormPreview() {
	m.Form.Err = ""
	m.Form.Preview = nil
	_, _, at, rec, err := m.Form.parse()
	if err != nil || !rec.Type.Repeats() {
		return
	}
	instants, err := expand.Expand(rec, at, rec.End, m.now())
	if err != nil {
		return
	}
	limit := 5
	if len(instants) < limit {
		limit = len(instants)
	}
	preview := make([]string, 0, limit)
	for _, t := range instants[:limit] {
		preview = append(preview, formatWhen(t))
	}
	m.Form.Preview = preview
}

func (m Model) renderForm() string {
	f := m.Form
	data := views.FormData{
		Active:         f.Active,
		TitleView:      f.Title,
		WhenView:       f.When,
		NotesView:      f.Notes,
		RecurrenceType: string(f.Repeat),
		FieldLabel:     f.Field.Label(),
		ErrorText:      f.Err,
		Preview:        f.Preview,
	}
	if f.Repeat.Repeats() {
		data.RecurrenceEnd = f.Until
	}
	if f.Repeat == model.RecurrenceCustom {
		data.Weekdays = f.Weekdays
	}
	if f.Repeat == model.RecurrencePerDay {
		data.Interval = f.Interval
	}
	return views.RenderForm(data)
}

func newTemplate(title, notes string, at time.Time, rec model.Recurrence) store.Template {
	return store.Template{Title: title, Notes: notes, At: at, Recurrence: rec}
}

var whenLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseWhen(raw string) (time.Time, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return time.Time{}, fmt.Errorf("datetime is required (YYYY-MM-DD HH:MM)")
	}
	for _, layout := range whenLayouts {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime %q (want YYYY-MM-DD HH:MM)", v)
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

func parseWeekdays(raw string) ([]time.Weekday, error) {
	v := strings.TrimSpace(strings.ToLower(raw))
	if v == "" {
		return nil, fmt.Errorf("weekdays are required (e.g. mon,wed,fri)")
	}
	out := make([]time.Weekday, 0, 7)
	for _, token := range strings.Split(v, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		wd, ok := weekdayNames[token]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", token)
		}
		out = append(out, wd)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("weekdays are required (e.g. mon,wed,fri)")
	}
	return out, nil
}
