package update

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/sandeepkv93/remindd/internal/classify"
	"github.com/sandeepkv93/remindd/internal/clock"
	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/notify"
	"github.com/sandeepkv93/remindd/internal/scheduler"
	"github.com/sandeepkv93/remindd/internal/store"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Today   string
	Next    string
	Past    string
	Add     string
	Archive string
	Delete  string
	Toggle  string
	Mode    string
	Help    string
	Quit    string
}

type rowKind int

const (
	rowOccurrence rowKind = iota
	rowGroup
)

// row is one selectable line of the current view: either a single
// occurrence or a per-day group acting as one unit.
type row struct {
	kind  rowKind
	occ   model.Occurrence
	group classify.Group
}

type FormField int

const (
	FieldTitle FormField = iota
	FieldWhen
	FieldNotes
	FieldRepeat
	FieldUntil
	FieldWeekdays
	FieldInterval
	fieldCount
)

func (f FormField) Label() string {
	switch f {
	case FieldTitle:
		return "title"
	case FieldWhen:
		return "when"
	case FieldNotes:
		return "notes"
	case FieldRepeat:
		return "repeat"
	case FieldUntil:
		return "until"
	case FieldWeekdays:
		return "weekdays"
	case FieldInterval:
		return "interval"
	default:
		return "unknown"
	}
}

// FormState is the new-reminder editor. Free-text fields hold raw strings;
// parsing happens on save so half-typed input never errors.
type FormState struct {
	Active   bool
	Field    FormField
	Title    string
	When     string
	Notes    string
	Repeat   model.RecurrenceType
	Until    string
	Weekdays string
	Interval string
	Err      string
	Preview  []string
}

type PaletteState struct {
	Active bool
	Input  string
}

type Model struct {
	CurrentView    classify.View
	Store          *store.Store
	Clock          clock.Clock
	Engine         *scheduler.Engine
	Banners        *notify.Center
	Desktop        notify.Desktop
	DesktopEnabled bool
	WeekStart      time.Weekday
	ShowArchived   bool
	// OnShowArchivedChange persists the Past view mode; nil means the
	// toggle is session-only.
	OnShowArchivedChange func(bool)
	Cursor               int
	Form                 FormState
	Palette              PaletteState
	HelpVisible          bool
	Status               StatusBar
	Keys                 GlobalKeyMap
	Quitting             bool
	LastError            error
	rows                 []row
	commandInput         textinput.Model
}

type ReclassifyTickMsg struct{}

type RefreshMsg struct{}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type AppErrorMsg struct {
	Err error
}

type AlarmDueMsg struct {
	Event scheduler.AlarmEvent
}

// MaintenanceDoneMsg carries the backfilled occurrences so their alarms can
// be armed on the update loop's goroutine.
type MaintenanceDoneMsg struct {
	Created []model.Occurrence
	Purged  int
}

func NewModel(st *store.Store) Model {
	input := textinput.New()
	input.Placeholder = "command"
	m := Model{
		CurrentView: classify.ViewToday,
		Store:       st,
		Clock:       clock.System{},
		Banners:     notify.NewCenter(),
		Desktop:     notify.NoopDesktop{},
		WeekStart:   time.Sunday,
		Keys: GlobalKeyMap{
			Today:   "1",
			Next:    "2",
			Past:    "3",
			Add:     "a",
			Archive: "A",
			Delete:  "d",
			Toggle:  "enter",
			Mode:    "s",
			Help:    "?",
			Quit:    "q",
		},
		Form:         defaultFormState(),
		commandInput: input,
	}
	m.rebuildRows()
	return m
}

type Runtime struct {
	Engine               *scheduler.Engine
	Desktop              notify.Desktop
	DesktopEnabled       bool
	WeekStart            time.Weekday
	ShowArchived         bool
	BannerTTL            time.Duration
	OnShowArchivedChange func(bool)
}

func NewModelWithRuntime(st *store.Store, rt Runtime) Model {
	m := NewModel(st)
	m.Engine = rt.Engine
	if rt.BannerTTL > 0 {
		m.Banners = notify.NewCenterTTL(rt.BannerTTL)
	}
	if rt.Desktop != nil {
		m.Desktop = rt.Desktop
	}
	m.DesktopEnabled = rt.DesktopEnabled
	m.WeekStart = rt.WeekStart
	m.ShowArchived = rt.ShowArchived
	m.OnShowArchivedChange = rt.OnShowArchivedChange
	m.rebuildRows()
	return m
}

func defaultFormState() FormState {
	return FormState{Repeat: model.RecurrenceNone}
}

func (m *Model) now() time.Time {
	if m.Clock == nil {
		return time.Now()
	}
	return m.Clock.Now()
}
