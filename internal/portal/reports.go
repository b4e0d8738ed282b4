package portal

import (
	"context"
	"sort"

	"github.com/medrex/onco-portal/pkg/calendar"
	"github.com/medrex/onco-portal/pkg/interfaces"
	"github.com/medrex/onco-portal/pkg/monitoring"
	"github.com/medrex/onco-portal/pkg/types"
	"go.opentelemetry.io/otel/attribute"
)

// ReportService aggregates events for the admin dashboard
type ReportService struct {
	patients interfaces.PatientRepository
	events   interfaces.EventRepository
	today    func() calendar.Date
	tracing  *monitoring.TracingManager
}

// NewReportService creates a new report service
func NewReportService(patients interfaces.PatientRepository, events interfaces.EventRepository, today func() calendar.Date, tracing *monitoring.TracingManager) *ReportService {
	return &ReportService{
		patients: patients,
		events:   events,
		today:    today,
		tracing:  tracing,
	}
}

// Dashboard summarizes events dated within [from, to].
//
// The completion rate counts completed events against every event that was
// not cancelled. Upcoming events are those dated today or later that are
// neither completed nor cancelled. Ties for the busiest day go to the
// earliest date. Events whose date cannot be parsed are left out of every count.
func (rs *ReportService) Dashboard(ctx context.Context, from, to calendar.Date) (*Dashboard, error) {
	ctx, span := rs.tracing.StartSpan(ctx, monitoring.SpanReport)
	defer span.End()

	if to.Before(from) {
		err := types.NewValidationError(types.ErrCodeInvalidDate, "report range ends before it starts", map[string]interface{}{
			"from": from.String(),
			"to":   to.String(),
		})
		rs.tracing.RecordError(span, err)
		return nil, err
	}

	events, err := rs.events.ListBetween(ctx, "", from, to)
	if err != nil {
		rs.tracing.RecordError(span, err)
		return nil, err
	}

	today := rs.today()
	report := &Dashboard{
		From:      from,
		To:        to,
		ByStatus:  make(map[types.EventStatus]int, len(types.EventStatuses())),
		ByType:    make(map[types.EventType]int, len(types.EventTypes())),
		ByPatient: []PatientTotal{},
	}
	for _, s := range types.EventStatuses() {
		report.ByStatus[s] = 0
	}
	for _, t := range types.EventTypes() {
		report.ByType[t] = 0
	}

	perPatient := make(map[string]*PatientTotal)
	perDay := make(map[calendar.Date]int)
	for _, e := range events {
		// events without a readable date belong to no day of the range
		d, err := calendar.ParseDate(e.Date)
		if err != nil {
			continue
		}
		report.Total++
		report.ByStatus[e.Status]++
		report.ByType[e.Type]++

		row, ok := perPatient[e.PatientID]
		if !ok {
			row = &PatientTotal{PatientID: e.PatientID}
			perPatient[e.PatientID] = row
		}
		row.Total++

		perDay[d]++
		if isUpcoming(e, d, today) {
			report.Upcoming++
			row.Upcoming++
		}
	}

	if active := report.Total - report.ByStatus[types.EventStatusCancelled]; active > 0 {
		report.CompletionRate = float64(report.ByStatus[types.EventStatusCompleted]) / float64(active)
	}

	for d, n := range perDay {
		if report.BusiestDay == nil || n > report.BusiestDay.Count || (n == report.BusiestDay.Count && d.Before(report.BusiestDay.Date)) {
			report.BusiestDay = &DayCount{Date: d, Count: n}
		}
	}

	for id, row := range perPatient {
		patient, err := rs.patients.Get(ctx, id)
		switch {
		case err == nil:
			row.Name = patient.FullName()
		case types.IsNotFound(err):
			row.Name = id
		default:
			rs.tracing.RecordError(span, err)
			return nil, err
		}
		report.ByPatient = append(report.ByPatient, *row)
	}
	sort.Slice(report.ByPatient, func(i, j int) bool {
		a, b := report.ByPatient[i], report.ByPatient[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.PatientID < b.PatientID
	})

	span.SetAttributes(attribute.Int(monitoring.AttrEventCount, report.Total))
	return report, nil
}

func isUpcoming(e types.Event, d, today calendar.Date) bool {
	if d.Before(today) {
		return false
	}
	return e.Status != types.EventStatusCompleted && e.Status != types.EventStatusCancelled
}
