package portal

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"io"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/medrex/onco-portal/pkg/calendar"
	"github.com/medrex/onco-portal/pkg/interfaces"
	"github.com/medrex/onco-portal/pkg/logger"
	"github.com/medrex/onco-portal/pkg/monitoring"
	"github.com/medrex/onco-portal/pkg/types"
	"go.opentelemetry.io/otel/attribute"
)

// ProjectorConfig tunes a CalendarProjector
type ProjectorConfig struct {
	// CacheSize bounds the memoized month views; 0 disables the cache
	CacheSize int
	// Location is the zone "today" is evaluated in
	Location *time.Location
	// Clock overrides time.Now
	Clock func() time.Time
}

// monthKey identifies a memoized month view. The events fingerprint keeps a
// cached view from outliving the data it was built from.
type monthKey struct {
	patientID string
	anchor    calendar.Date
	selected  calendar.Date
	weekStart time.Weekday
	today     calendar.Date
	events    uint64
}

// CalendarProjector implements CalendarService
type CalendarProjector struct {
	events   interfaces.EventRepository
	cache    *lru.Cache[monthKey, *MonthView]
	location *time.Location
	clock    func() time.Time
	metrics  *monitoring.MetricsCollector
	tracing  *monitoring.TracingManager
	logger   *logger.Logger
}

var _ CalendarService = (*CalendarProjector)(nil)

// NewCalendarProjector creates a new calendar projector
func NewCalendarProjector(events interfaces.EventRepository, cfg ProjectorConfig, metrics *monitoring.MetricsCollector, tracing *monitoring.TracingManager, log *logger.Logger) (*CalendarProjector, error) {
	p := &CalendarProjector{
		events:   events,
		location: cfg.Location,
		clock:    cfg.Clock,
		metrics:  metrics,
		tracing:  tracing,
		logger:   log,
	}
	if p.location == nil {
		p.location = time.UTC
	}
	if p.clock == nil {
		p.clock = time.Now
	}

	if cfg.CacheSize > 0 {
		cache, err := lru.New[monthKey, *MonthView](cfg.CacheSize)
		if err != nil {
			return nil, types.NewInternalError(types.ErrCodeInternalError, "failed to create month cache", err)
		}
		p.cache = cache
	}

	return p, nil
}

// Today returns the current date in the projector's zone
func (p *CalendarProjector) Today() calendar.Date {
	return calendar.DateOf(p.clock().In(p.location))
}

// requirePatientScope rejects patient views that do not name their patient;
// only care team roles may look across every patient
func requirePatientScope(role types.Role, patientID string) error {
	if patientID == "" && role == types.RolePatient {
		return types.NewValidationError(types.ErrCodeInvalidInput, "patient_id is required for the patient view", nil)
	}
	return nil
}

// Month projects the requested month onto a 42 cell grid
func (p *CalendarProjector) Month(ctx context.Context, req MonthRequest) (*MonthView, error) {
	ctx, span := p.tracing.StartSpan(ctx, monitoring.SpanCalendarMonth,
		attribute.String(monitoring.AttrPatientID, req.PatientID),
		attribute.String(monitoring.AttrRole, string(req.Role)),
	)
	defer span.End()

	if err := requirePatientScope(req.Role, req.PatientID); err != nil {
		p.tracing.RecordError(span, err)
		return nil, err
	}

	anchor := calendar.NewDate(req.Year, req.Month, 1)
	span.SetAttributes(attribute.String(monitoring.AttrMonth, monthLabel(anchor)))

	// the grid window never reaches beyond six weeks around the month
	first := anchor.AddDays(-calendar.Leading(anchor.Weekday(), req.WeekStart))
	last := first.AddDays(calendar.GridSize - 1)

	events, err := p.events.ListBetween(ctx, req.PatientID, first, last)
	p.metrics.RecordFixtureLookup("events", err)
	if err != nil {
		p.tracing.RecordError(span, err)
		return nil, err
	}

	today := p.Today()
	key := monthKey{
		patientID: req.PatientID,
		anchor:    anchor,
		weekStart: req.WeekStart,
		today:     today,
		events:    fingerprint(events),
	}
	if req.Selected != nil {
		key.selected = *req.Selected
	}

	if p.cache != nil {
		if view, ok := p.cache.Get(key); ok {
			p.metrics.RecordCacheLookup(true)
			span.SetAttributes(attribute.Bool(monitoring.AttrCacheHit, true))
			return view, nil
		}
		p.metrics.RecordCacheLookup(false)
	}

	start := time.Now()
	grid := calendar.BuildMonth(anchor, req.Selected, events, calendar.Options{
		WeekStart: req.WeekStart,
		Today:     today,
	})
	elapsed := time.Since(start)
	p.metrics.RecordGridBuild(string(req.Role), elapsed)

	view := newMonthView(req, anchor, today, &grid)
	p.logger.Performance("calendar.month", elapsed, map[string]interface{}{
		"month":       monthLabel(anchor),
		"event_count": view.EventCount,
	})
	span.SetAttributes(
		attribute.Bool(monitoring.AttrCacheHit, false),
		attribute.Int(monitoring.AttrEventCount, view.EventCount),
	)
	p.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"patient_id":  req.PatientID,
		"month":       monthLabel(anchor),
		"event_count": view.EventCount,
	}).Debug("Projected month grid")

	if p.cache != nil {
		p.cache.Add(key, view)
	}
	return view, nil
}

func newMonthView(req MonthRequest, anchor, today calendar.Date, grid *calendar.Grid) *MonthView {
	rangeStart, rangeEnd := grid.Range()
	prev, next := anchor.AddMonths(-1), anchor.AddMonths(1)

	view := &MonthView{
		PatientID:  req.PatientID,
		Year:       anchor.Year,
		Month:      anchor.Month,
		MonthName:  anchor.Month.String(),
		WeekStart:  strings.ToLower(req.WeekStart.String()),
		Weekdays:   calendar.WeekdayLabels(req.WeekStart),
		Today:      today,
		RangeStart: rangeStart,
		RangeEnd:   rangeEnd,
		EventCount: grid.EventCount(),
		Prev:       MonthRef{Year: prev.Year, Month: prev.Month},
		Next:       MonthRef{Year: next.Year, Month: next.Month},
		Days:       make([]DayView, 0, calendar.GridSize),
	}
	if req.Selected != nil {
		selected := *req.Selected
		view.Selected = &selected
	}
	for _, d := range grid {
		view.Days = append(view.Days, DayView{
			Date:           d.Date,
			Day:            d.Date.Day,
			IsCurrentMonth: d.IsCurrentMonth,
			IsToday:        d.IsToday,
			IsSelected:     d.IsSelected,
			Events:         d.Events,
		})
	}
	return view
}

// Day lists the events dated on date. An empty patientID spans every patient.
func (p *CalendarProjector) Day(ctx context.Context, patientID string, date calendar.Date) (*DayAgenda, error) {
	ctx, span := p.tracing.StartSpan(ctx, monitoring.SpanCalendarDay,
		attribute.String(monitoring.AttrPatientID, patientID),
	)
	defer span.End()

	var (
		events []types.Event
		err    error
	)
	if patientID == "" {
		events, err = p.events.ListAll(ctx)
	} else {
		events, err = p.events.ListByPatient(ctx, patientID)
	}
	p.metrics.RecordFixtureLookup("events", err)
	if err != nil {
		p.tracing.RecordError(span, err)
		return nil, err
	}

	matched := calendar.MatchEvents(date, events)
	span.SetAttributes(attribute.Int(monitoring.AttrEventCount, len(matched)))

	return &DayAgenda{
		PatientID: patientID,
		Date:      date,
		IsToday:   date == p.Today(),
		Events:    matched,
	}, nil
}

// ExportICS writes the month's events as an iCalendar document
func (p *CalendarProjector) ExportICS(ctx context.Context, patientID string, year int, month time.Month, w io.Writer) error {
	ctx, span := p.tracing.StartSpan(ctx, monitoring.SpanCalendarExport,
		attribute.String(monitoring.AttrPatientID, patientID),
	)
	defer span.End()

	bounds := calendar.MonthBounds(year, month)
	events, err := p.events.ListBetween(ctx, patientID, bounds.First, bounds.Last)
	p.metrics.RecordFixtureLookup("events", err)
	if err != nil {
		p.tracing.RecordError(span, err)
		return err
	}

	name := "Care calendar " + monthLabel(bounds.First)
	if patientID != "" {
		name += " " + patientID
	}

	if err := writeICS(w, name, p.clock().UTC(), events); err != nil {
		p.tracing.RecordError(span, err)
		return types.NewInternalError(types.ErrCodeInternalError, "failed to write calendar export", err)
	}
	p.metrics.RecordExport()
	span.SetAttributes(attribute.Int(monitoring.AttrEventCount, len(events)))
	return nil
}

// Purge drops every memoized month view
func (p *CalendarProjector) Purge() {
	if p.cache != nil {
		p.cache.Purge()
	}
}

// CacheLen reports how many month views are memoized
func (p *CalendarProjector) CacheLen() int {
	if p.cache == nil {
		return 0
	}
	return p.cache.Len()
}

func fingerprint(events []types.Event) uint64 {
	h := fnv.New64a()
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], uint64(len(events)))
	_, _ = h.Write(n[:])
	for _, e := range events {
		for _, field := range []string{e.ID, e.PatientID, e.Title, e.Date, e.Time, string(e.Type), string(e.Status), e.Location, e.Description} {
			_, _ = io.WriteString(h, field)
			_, _ = h.Write([]byte{0})
		}
	}
	return h.Sum64()
}

func monthLabel(d calendar.Date) string {
	return fmt.Sprintf("%04d-%02d", d.Year, int(d.Month))
}
