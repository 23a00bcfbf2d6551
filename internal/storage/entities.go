package storage

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sandeepkv93/remindd/internal/model"
)

// OccurrenceRow is the flat persisted shape of one occurrence. The
// recurrence payload is denormalized into columns so the table needs no
// companion series table.
type OccurrenceRow struct {
	ID                 string
	Title              string
	Notes              string
	At                 time.Time
	RecurrenceType     string
	RecurrenceEnd      *time.Time
	RecurrenceWeekdays string
	IntervalMinutes    int
	Completed          bool
	Archived           bool
	ArchivedAt         *time.Time
	CreatedAt          time.Time
}

type OccurrenceListFilter struct {
	Title    string
	Archived *bool
	Limit    int
	Offset   int
}

// Setting is one persisted key/value preference, such as the Past view's
// show-archived toggle.
type Setting struct {
	Key   string
	Value string
}

const (
	SettingShowArchived = "show_archived"
	SettingWeekStart    = "week_start"
)

// RowFromOccurrence flattens a domain occurrence for storage.
func RowFromOccurrence(occ model.Occurrence) OccurrenceRow {
	row := OccurrenceRow{
		ID:                 occ.ID,
		Title:              occ.Title,
		Notes:              occ.Notes,
		At:                 occ.At,
		RecurrenceType:     string(occ.Recurrence.Type),
		RecurrenceWeekdays: encodeWeekdays(occ.Recurrence.Weekdays),
		IntervalMinutes:    occ.Recurrence.IntervalMinutes,
		Completed:          occ.Completed,
		Archived:           occ.Archived,
		ArchivedAt:         occ.ArchivedAt,
		CreatedAt:          occ.CreatedAt,
	}
	if !occ.Recurrence.End.IsZero() {
		end := occ.Recurrence.End
		row.RecurrenceEnd = &end
	}
	return row
}

// ToOccurrence rebuilds the domain occurrence from its row.
func (r OccurrenceRow) ToOccurrence() (model.Occurrence, error) {
	weekdays, err := decodeWeekdays(r.RecurrenceWeekdays)
	if err != nil {
		return model.Occurrence{}, fmt.Errorf("row %s: %w", r.ID, err)
	}
	occ := model.Occurrence{
		ID:    r.ID,
		Title: r.Title,
		Notes: r.Notes,
		At:    r.At,
		Recurrence: model.Recurrence{
			Type:            model.RecurrenceType(r.RecurrenceType),
			Weekdays:        weekdays,
			IntervalMinutes: r.IntervalMinutes,
		},
		Completed:  r.Completed,
		Archived:   r.Archived,
		ArchivedAt: r.ArchivedAt,
		CreatedAt:  r.CreatedAt,
	}
	if r.RecurrenceEnd != nil {
		occ.Recurrence.End = *r.RecurrenceEnd
	}
	return occ, nil
}

func encodeWeekdays(days []time.Weekday) string {
	if len(days) == 0 {
		return ""
	}
	parts := make([]string, 0, len(days))
	for _, d := range days {
		parts = append(parts, strconv.Itoa(int(d)))
	}
	return strings.Join(parts, ",")
}

func decodeWeekdays(v string) ([]time.Weekday, error) {
	if v == "" {
		return nil, nil
	}
	parts := strings.Split(v, ",")
	out := make([]time.Weekday, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("bad weekday %q: %w", p, err)
		}
		out = append(out, time.Weekday(n))
	}
	return out, nil
}
