package calendar

import "github.com/medrex/onco-portal/pkg/types"

// View is the navigation state of a month calendar. It is a value: every
// method returns an updated copy and leaves the receiver untouched.
type View struct {
	Anchor   Date  `json:"anchor"`
	Selected *Date `json:"selected,omitempty"`
}

// NewView returns a view anchored on d's month with nothing selected
func NewView(d Date) View {
	return View{Anchor: d.FirstOfMonth()}
}

// Next moves to the following month
func (v View) Next() View {
	v.Anchor = v.Anchor.AddMonths(1)
	return v
}

// Prev moves to the preceding month
func (v View) Prev() View {
	v.Anchor = v.Anchor.AddMonths(-1)
	return v
}

// Today jumps to today's month and selects today
func (v View) Today(today Date) View {
	return View{Anchor: today.FirstOfMonth(), Selected: &today}
}

// Select marks d as selected. Selecting a day of another month moves the anchor
// to that month.
func (v View) Select(d Date) View {
	v.Selected = &d
	if !d.SameMonth(v.Anchor) {
		v.Anchor = d.FirstOfMonth()
	}
	return v
}

// Clear removes the selection
func (v View) Clear() View {
	v.Selected = nil
	return v
}

// Build projects events onto the view's month
func (v View) Build(events []types.Event, opts Options) Grid {
	return BuildMonth(v.Anchor, v.Selected, events, opts)
}
