package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Bounds describes the extent of a single month
type Bounds struct {
	Year         int          `json:"year"`
	Month        time.Month   `json:"month"`
	First        Date         `json:"first"`
	Last         Date         `json:"last"`
	FirstWeekday time.Weekday `json:"first_weekday"`
	Days         int          `json:"days"`
}

// MonthBounds returns the first weekday and day count of the given month.
// Months outside 1..12 roll over into the neighbouring years.
func MonthBounds(year int, month time.Month) Bounds {
	first := NewDate(year, month, 1)
	// day 0 of the following month is the last day of this one
	last := NewDate(first.Year, first.Month+1, 0)

	return Bounds{
		Year:         first.Year,
		Month:        first.Month,
		First:        first,
		Last:         last,
		FirstWeekday: first.Weekday(),
		Days:         last.Day,
	}
}

// DaysIn returns the number of days in the given month
func DaysIn(year int, month time.Month) int {
	return MonthBounds(year, month).Days
}

// Leading returns how many cells of the previous month precede day 1 when the
// grid's first column is weekStart.
func Leading(firstWeekday, weekStart time.Weekday) int {
	return ((int(firstWeekday)-int(weekStart))%DaysPerWeek + DaysPerWeek) % DaysPerWeek
}

// ParseWeekday parses a weekday name ("monday", "mon") or number (0 = Sunday)
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return time.Sunday, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n >= DaysPerWeek {
			return 0, fmt.Errorf("weekday %d out of range 0-6", n)
		}
		return time.Weekday(n), nil
	}
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		name := strings.ToLower(wd.String())
		if s == name || s == name[:3] {
			return wd, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

// WeekdayLabels returns short weekday names in column order for weekStart
func WeekdayLabels(weekStart time.Weekday) []string {
	labels := make([]string, DaysPerWeek)
	for i := range labels {
		labels[i] = (time.Weekday((int(weekStart)+i)%DaysPerWeek)).String()[:3]
	}
	return labels
}
