package portal

import (
	"context"
	"io"
	"time"

	"github.com/medrex/onco-portal/pkg/calendar"
	"github.com/medrex/onco-portal/pkg/types"
)

// CalendarService projects fixture events onto month grids and day agendas
type CalendarService interface {
	Month(ctx context.Context, req MonthRequest) (*MonthView, error)
	Day(ctx context.Context, patientID string, date calendar.Date) (*DayAgenda, error)
	ExportICS(ctx context.Context, patientID string, year int, month time.Month, w io.Writer) error
}

// MonthRequest selects the month grid to project. An empty PatientID spans
// every patient and is only allowed for care team roles.
type MonthRequest struct {
	PatientID string
	Year      int
	Month     time.Month
	Selected  *calendar.Date
	WeekStart time.Weekday
	Role      types.Role
}

// MonthRef names a month for navigation links
type MonthRef struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// DayView is one rendered grid cell
type DayView struct {
	Date           calendar.Date `json:"date"`
	Day            int           `json:"day"`
	IsCurrentMonth bool          `json:"is_current_month"`
	IsToday        bool          `json:"is_today"`
	IsSelected     bool          `json:"is_selected"`
	Events         []types.Event `json:"events"`
}

// MonthView is the projected month. Views may be shared through the cache,
// so callers treat them as read-only.
type MonthView struct {
	PatientID  string         `json:"patient_id,omitempty"`
	Year       int            `json:"year"`
	Month      time.Month     `json:"month"`
	MonthName  string         `json:"month_name"`
	WeekStart  string         `json:"week_start"`
	Weekdays   []string       `json:"weekdays"`
	Today      calendar.Date  `json:"today"`
	Selected   *calendar.Date `json:"selected,omitempty"`
	RangeStart calendar.Date  `json:"range_start"`
	RangeEnd   calendar.Date  `json:"range_end"`
	EventCount int            `json:"event_count"`
	Prev       MonthRef       `json:"prev"`
	Next       MonthRef       `json:"next"`
	Days       []DayView      `json:"days"`
}

// Weeks splits Days into rows of seven
func (v *MonthView) Weeks() [][]DayView {
	weeks := make([][]DayView, 0, calendar.WeeksPerGrid)
	for i := 0; i+calendar.DaysPerWeek <= len(v.Days); i += calendar.DaysPerWeek {
		weeks = append(weeks, v.Days[i:i+calendar.DaysPerWeek])
	}
	return weeks
}

// DayAgenda lists the events of a single day
type DayAgenda struct {
	PatientID string        `json:"patient_id,omitempty"`
	Date      calendar.Date `json:"date"`
	IsToday   bool          `json:"is_today"`
	Events    []types.Event `json:"events"`
}

// PatientTotal is one row of the dashboard's per patient breakdown
type PatientTotal struct {
	PatientID string `json:"patient_id"`
	Name      string `json:"name"`
	Total     int    `json:"total"`
	Upcoming  int    `json:"upcoming"`
}

// DayCount pairs a date with an event count
type DayCount struct {
	Date  calendar.Date `json:"date"`
	Count int           `json:"count"`
}

// Dashboard aggregates events for the admin reports view
type Dashboard struct {
	From           calendar.Date             `json:"from"`
	To             calendar.Date             `json:"to"`
	Total          int                       `json:"total"`
	ByStatus       map[types.EventStatus]int `json:"by_status"`
	ByType         map[types.EventType]int   `json:"by_type"`
	ByPatient      []PatientTotal            `json:"by_patient"`
	CompletionRate float64                   `json:"completion_rate"`
	Upcoming       int                       `json:"upcoming"`
	BusiestDay     *DayCount                 `json:"busiest_day,omitempty"`
}
