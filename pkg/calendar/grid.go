package calendar

import (
	"time"

	"github.com/medrex/onco-portal/pkg/types"
)

const (
	DaysPerWeek  = 7
	WeeksPerGrid = 6
	GridSize     = DaysPerWeek * WeeksPerGrid
)

// Day is one cell of a month grid
type Day struct {
	Date           Date          `json:"date"`
	IsCurrentMonth bool          `json:"is_current_month"`
	IsToday        bool          `json:"is_today"`
	IsSelected     bool          `json:"is_selected"`
	Events         []types.Event `json:"events"`
}

// Options controls grid alignment and the "today" marker
type Options struct {
	// WeekStart is the weekday shown in the first column
	WeekStart time.Weekday
	// Today marks the matching cell; the zero Date marks none
	Today Date
}

// Grid is a month view: six full weeks, always 42 cells
type Grid [GridSize]Day

// BuildMonth projects events onto the six-week grid of anchor's month.
// Only anchor's year and month are used. A nil selected selects nothing.
// events is read but never modified.
func BuildMonth(anchor Date, selected *Date, events []types.Event, opts Options) Grid {
	bounds := MonthBounds(anchor.Year, anchor.Month)
	leading := Leading(bounds.FirstWeekday, opts.WeekStart)
	index := IndexEvents(events)

	var grid Grid
	cell := 0
	place := func(d Date, current bool) {
		grid[cell] = Day{
			Date:           d,
			IsCurrentMonth: current,
			IsToday:        !opts.Today.IsZero() && d == opts.Today,
			IsSelected:     selected != nil && d == *selected,
			Events:         eventsOn(index, d),
		}
		cell++
	}

	// tail of the previous month
	for i := leading; i > 0; i-- {
		place(bounds.First.AddDays(-i), false)
	}
	for day := 1; day <= bounds.Days; day++ {
		place(Date{Year: bounds.Year, Month: bounds.Month, Day: day}, true)
	}
	// head of the next month
	for next := bounds.Last.AddDays(1); cell < GridSize; next = next.AddDays(1) {
		place(next, false)
	}

	return grid
}

func eventsOn(index map[Date][]types.Event, d Date) []types.Event {
	matched := index[d]
	out := make([]types.Event, len(matched))
	copy(out, matched)
	return out
}

// Weeks returns the grid as rows of seven days
func (g *Grid) Weeks() [WeeksPerGrid][DaysPerWeek]Day {
	var weeks [WeeksPerGrid][DaysPerWeek]Day
	for i, d := range g {
		weeks[i/DaysPerWeek][i%DaysPerWeek] = d
	}
	return weeks
}

// Range returns the first and last date covered by the grid
func (g *Grid) Range() (first, last Date) {
	return g[0].Date, g[GridSize-1].Date
}

// Find returns the cell for d, if the grid covers it
func (g *Grid) Find(d Date) (Day, bool) {
	first, last := g.Range()
	if d.Before(first) || d.After(last) {
		return Day{}, false
	}
	for _, cell := range g {
		if cell.Date == d {
			return cell, true
		}
	}
	return Day{}, false
}

// Today returns the cell flagged as today, if any
func (g *Grid) Today() (Day, bool) {
	for _, cell := range g {
		if cell.IsToday {
			return cell, true
		}
	}
	return Day{}, false
}

// Selected returns the cell flagged as selected, if any
func (g *Grid) Selected() (Day, bool) {
	for _, cell := range g {
		if cell.IsSelected {
			return cell, true
		}
	}
	return Day{}, false
}

// EventCount returns the number of events attached to the grid's cells
func (g *Grid) EventCount() int {
	n := 0
	for _, cell := range g {
		n += len(cell.Events)
	}
	return n
}
