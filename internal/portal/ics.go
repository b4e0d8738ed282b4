package portal

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/medrex/onco-portal/pkg/calendar"
	"github.com/medrex/onco-portal/pkg/types"
)

const (
	icsProductID = "-//Onco Portal//Care Calendar//EN"
	icsUIDDomain = "onco-portal.local"
)

var icsEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	",", `\,`,
	"\r\n", `\n`,
	"\n", `\n`,
)

// writeICS renders events as all-day VEVENTs. Events whose date cannot be
// parsed are left out.
func writeICS(w io.Writer, name string, stamp time.Time, events []types.Event) error {
	bw := bufio.NewWriter(w)
	line := func(format string, args ...interface{}) {
		fmt.Fprintf(bw, format, args...)
		bw.WriteString("\r\n")
	}

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:%s", icsProductID)
	line("CALSCALE:GREGORIAN")
	line("METHOD:PUBLISH")
	line("X-WR-CALNAME:%s", icsEscaper.Replace(name))

	dtstamp := stamp.UTC().Format("20060102T150405Z")
	for _, e := range events {
		d, err := calendar.ParseDate(e.Date)
		if err != nil {
			continue
		}
		start := d.Time(time.UTC)

		line("BEGIN:VEVENT")
		line("UID:%s@%s", e.ID, icsUIDDomain)
		line("DTSTAMP:%s", dtstamp)
		line("DTSTART;VALUE=DATE:%s", start.Format("20060102"))
		line("DTEND;VALUE=DATE:%s", start.AddDate(0, 0, 1).Format("20060102"))
		line("SUMMARY:%s", icsEscaper.Replace(e.Title))
		line("DESCRIPTION:%s", icsEscaper.Replace(icsDescription(e)))
		if e.Location != "" {
			line("LOCATION:%s", icsEscaper.Replace(e.Location))
		}
		line("CATEGORIES:%s", strings.ToUpper(string(e.Type)))
		line("STATUS:%s", icsStatus(e.Status))
		line("END:VEVENT")
	}

	line("END:VCALENDAR")
	return bw.Flush()
}

func icsDescription(e types.Event) string {
	parts := make([]string, 0, 3)
	if e.Time != "" {
		parts = append(parts, "Time: "+e.Time)
	}
	parts = append(parts, "Status: "+string(e.Status))
	if e.Description != "" {
		parts = append(parts, e.Description)
	}
	return strings.Join(parts, "\n")
}

func icsStatus(s types.EventStatus) string {
	switch s {
	case types.EventStatusConfirmed, types.EventStatusCompleted:
		return "CONFIRMED"
	case types.EventStatusCancelled:
		return "CANCELLED"
	default:
		return "TENTATIVE"
	}
}
