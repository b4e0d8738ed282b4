package calendar

import "github.com/medrex/onco-portal/pkg/types"

// MatchEvents returns the events whose date is exactly date, in input order.
// Events with an unparsable date never match.
func MatchEvents(date Date, events []types.Event) []types.Event {
	matched := make([]types.Event, 0)
	for _, e := range events {
		d, err := ParseDate(e.Date)
		if err != nil {
			continue
		}
		if d == date {
			matched = append(matched, e)
		}
	}
	return matched
}

// IndexEvents groups events by calendar date, keeping input order per date.
// Events with an unparsable date are dropped.
func IndexEvents(events []types.Event) map[Date][]types.Event {
	index := make(map[Date][]types.Event)
	for _, e := range events {
		d, err := ParseDate(e.Date)
		if err != nil {
			continue
		}
		index[d] = append(index[d], e)
	}
	return index
}

// EventsBetween returns events dated within [from, to], in input order
func EventsBetween(events []types.Event, from, to Date) []types.Event {
	out := make([]types.Event, 0)
	for _, e := range events {
		d, err := ParseDate(e.Date)
		if err != nil {
			continue
		}
		if d.Before(from) || d.After(to) {
			continue
		}
		out = append(out, e)
	}
	return out
}
