package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/medrex/onco-portal/internal/portal"
	"github.com/medrex/onco-portal/pkg/types"
)

const eventMarker = "•"

var styleError = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))

// theme groups the styles of one renderer
type theme struct {
	title    lipgloss.Style
	header   lipgloss.Style
	day      lipgloss.Style
	outside  lipgloss.Style
	today    lipgloss.Style
	selected lipgloss.Style
	muted    lipgloss.Style
	status   map[types.EventStatus]lipgloss.Style
}

func newTheme(r *lipgloss.Renderer) theme {
	return theme{
		title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		header:   r.NewStyle().Bold(true),
		day:      r.NewStyle(),
		outside:  r.NewStyle().Foreground(lipgloss.Color("8")),
		today:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		selected: r.NewStyle().Reverse(true),
		muted:    r.NewStyle().Foreground(lipgloss.Color("8")),
		status: map[types.EventStatus]lipgloss.Style{
			types.EventStatusScheduled: r.NewStyle().Foreground(lipgloss.Color("12")),
			types.EventStatusConfirmed: r.NewStyle().Foreground(lipgloss.Color("10")),
			types.EventStatusCompleted: r.NewStyle().Foreground(lipgloss.Color("8")),
			types.EventStatusCancelled: r.NewStyle().Foreground(lipgloss.Color("1")).Strikethrough(true),
			types.EventStatusPending:   r.NewStyle().Foreground(lipgloss.Color("11")),
		},
	}
}

// renderMonth draws the grid one week per line. Each cell is four columns
// wide: the day number right aligned, then the event marker or a space.
func renderMonth(th theme, view *portal.MonthView) string {
	var b strings.Builder

	title := fmt.Sprintf("%s %d", view.MonthName, view.Year)
	if view.PatientID != "" {
		title += " · " + view.PatientID
	}
	b.WriteString(th.title.Render(title))
	b.WriteString("\n")

	for _, label := range view.Weekdays {
		b.WriteString(th.header.Render(fmt.Sprintf("%3s", label)))
		b.WriteString(" ")
	}
	b.WriteString("\n")

	for _, week := range view.Weeks() {
		for _, d := range week {
			marker := " "
			if len(d.Events) > 0 {
				marker = eventMarker
			}
			b.WriteString(dayStyle(th, d).Render(fmt.Sprintf("%3d", d.Day)))
			b.WriteString(marker)
		}
		b.WriteString("\n")
	}

	b.WriteString(th.muted.Render(fmt.Sprintf("%s %d events  today %s", eventMarker, view.EventCount, view.Today)))
	b.WriteString("\n")
	return b.String()
}

// dayStyle picks the style of a cell; selection wins over today
func dayStyle(th theme, d portal.DayView) lipgloss.Style {
	switch {
	case d.IsSelected:
		return th.selected
	case d.IsToday:
		return th.today
	case !d.IsCurrentMonth:
		return th.outside
	default:
		return th.day
	}
}

func renderAgenda(th theme, agenda *portal.DayAgenda) string {
	var b strings.Builder

	title := agenda.Date.String()
	if agenda.IsToday {
		title += " (today)"
	}
	b.WriteString(th.title.Render(title))
	b.WriteString("\n")

	if len(agenda.Events) == 0 {
		b.WriteString(th.muted.Render("No events"))
		b.WriteString("\n")
		return b.String()
	}

	for _, e := range agenda.Events {
		when := e.Time
		if when == "" {
			when = "all day"
		}
		fmt.Fprintf(&b, "%-8s %-11s %s  %s\n",
			when,
			string(e.Type),
			th.status[e.Status].Render(fmt.Sprintf("%-9s", e.Status)),
			e.Title,
		)
		if e.Location != "" {
			b.WriteString(th.muted.Render("         " + e.Location))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func renderPatients(th theme, patients []*types.Patient) string {
	var b strings.Builder
	b.WriteString(th.header.Render(fmt.Sprintf("%-8s %-20s %s", "ID", "NAME", "DIAGNOSIS")))
	b.WriteString("\n")
	for _, p := range patients {
		fmt.Fprintf(&b, "%-8s %-20s %s\n", p.ID, p.FullName(), p.Diagnosis)
	}
	return b.String()
}
