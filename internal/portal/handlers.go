package portal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/medrex/onco-portal/pkg/calendar"
	"github.com/medrex/onco-portal/pkg/logger"
	"github.com/medrex/onco-portal/pkg/types"
)

// RoleHeader selects the portal view a request is made for
const RoleHeader = "X-Portal-Role"

// setupRoutes configures HTTP routes for the portal service
func (s *Service) setupRoutes(router *mux.Router) {
	router.Use(s.monitor.HTTPMiddleware, s.monitor.RecoveryMiddleware(s.fallback))

	if s.config.Monitoring.Enabled {
		router.Handle(s.config.Monitoring.MetricsPath, s.metrics.Handler()).Methods(http.MethodGet)
	}
	router.HandleFunc(s.config.Monitoring.HealthPath, s.health.HTTPHandler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(s.roleMiddleware)

	// Calendar routes
	api.HandleFunc("/calendar/month", s.monthHandler).Methods(http.MethodGet)
	api.HandleFunc("/calendar/day", s.dayHandler).Methods(http.MethodGet)
	api.HandleFunc("/calendar/export.ics", s.exportHandler).Methods(http.MethodGet)

	// Patient routes
	api.HandleFunc("/patients", s.listPatientsHandler).Methods(http.MethodGet)
	api.HandleFunc("/patients/{id}", s.getPatientHandler).Methods(http.MethodGet)
	api.HandleFunc("/patients/{id}/biomarkers", s.biomarkersHandler).Methods(http.MethodGet)
	api.HandleFunc("/patients/{id}/timeline", s.timelineHandler).Methods(http.MethodGet)
	api.HandleFunc("/patients/{id}/events", s.patientEventsHandler).Methods(http.MethodGet)

	// Reports and navigation
	api.HandleFunc("/reports/dashboard", s.dashboardHandler).Methods(http.MethodGet)
	api.HandleFunc("/views", s.viewsHandler).Methods(http.MethodGet)

	s.logger.WithService(ServiceName).Debug("Portal routes configured")
}

// roleMiddleware resolves the request's role from the header or the
// configured default and stores it in the request context
func (s *Service) roleMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(RoleHeader)
		if raw == "" {
			raw = s.config.Portal.DefaultRole
		}

		role, err := types.ParseRole(raw)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		ctx := logger.ContextWithRole(r.Context(), string(role))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func roleOf(r *http.Request) types.Role {
	return types.Role(logger.RoleFromContext(r.Context()))
}

// monthHandler handles month grid projection
func (s *Service) monthHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	today := s.calendar.Today()

	year, err := intParam(q.Get("year"), today.Year, 1, 9999, "year")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	month, err := intParam(q.Get("month"), int(today.Month), 1, 12, "month")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	weekStart := s.config.Calendar.WeekStartDay()
	if raw := q.Get("week_start"); raw != "" {
		if weekStart, err = calendar.ParseWeekday(raw); err != nil {
			s.writeError(w, r, types.NewValidationError(types.ErrCodeInvalidInput, "invalid week_start", map[string]interface{}{
				"week_start": raw,
			}))
			return
		}
	}

	req := MonthRequest{
		PatientID: q.Get("patient_id"),
		Year:      year,
		Month:     time.Month(month),
		WeekStart: weekStart,
		Role:      roleOf(r),
	}
	if raw := q.Get("selected"); raw != "" {
		selected, err := dateParam(raw, "selected")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		req.Selected = &selected
	}

	view, err := s.calendar.Month(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, view)
}

// dayHandler handles the agenda of a single day
func (s *Service) dayHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	date := s.calendar.Today()
	if raw := q.Get("date"); raw != "" {
		var err error
		if date, err = dateParam(raw, "date"); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	patientID := q.Get("patient_id")
	if err := requirePatientScope(roleOf(r), patientID); err != nil {
		s.writeError(w, r, err)
		return
	}

	agenda, err := s.calendar.Day(r.Context(), patientID, date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, agenda)
}

// exportHandler handles iCalendar export of a month
func (s *Service) exportHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	today := s.calendar.Today()

	year, err := intParam(q.Get("year"), today.Year, 1, 9999, "year")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	month, err := intParam(q.Get("month"), int(today.Month), 1, 12, "month")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	patientID := q.Get("patient_id")
	if err := requirePatientScope(roleOf(r), patientID); err != nil {
		s.writeError(w, r, err)
		return
	}

	// buffer so a failure can still produce a JSON error
	var buf bytes.Buffer
	if err := s.calendar.ExportICS(r.Context(), patientID, year, time.Month(month), &buf); err != nil {
		s.writeError(w, r, err)
		return
	}

	filename := fmt.Sprintf("care_calendar_%04d-%02d.ics", year, month)
	if patientID != "" {
		filename = fmt.Sprintf("care_calendar_%s_%04d-%02d.ics", patientID, year, month)
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.WithContext(r.Context()).WithError(err).Warn("Failed to write calendar export")
	}
}

// listPatientsHandler handles patient listing
func (s *Service) listPatientsHandler(w http.ResponseWriter, r *http.Request) {
	patients, err := s.repos.Patients.List(r.Context())
	s.metrics.RecordFixtureLookup("patients", err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, patients)
}

// getPatientHandler handles patient retrieval
func (s *Service) getPatientHandler(w http.ResponseWriter, r *http.Request) {
	patient, err := s.repos.Patients.Get(r.Context(), mux.Vars(r)["id"])
	s.metrics.RecordFixtureLookup("patients", err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, patient)
}

// biomarkersHandler handles biomarker listing for a patient
func (s *Service) biomarkersHandler(w http.ResponseWriter, r *http.Request) {
	markers, err := s.repos.Biomarkers.ListByPatient(r.Context(), mux.Vars(r)["id"])
	s.metrics.RecordFixtureLookup("biomarkers", err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, markers)
}

// timelineHandler handles timeline listing for a patient
func (s *Service) timelineHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := s.repos.Timeline.ListByPatient(r.Context(), mux.Vars(r)["id"])
	s.metrics.RecordFixtureLookup("timeline", err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, entries)
}

// patientEventsHandler handles event listing for a patient, optionally
// limited to a from/to date range
func (s *Service) patientEventsHandler(w http.ResponseWriter, r *http.Request) {
	patientID := mux.Vars(r)["id"]
	q := r.URL.Query()

	var (
		events []types.Event
		err    error
	)
	if q.Get("from") == "" && q.Get("to") == "" {
		events, err = s.repos.Events.ListByPatient(r.Context(), patientID)
	} else {
		var from, to calendar.Date
		if from, to, err = s.rangeParams(q.Get("from"), q.Get("to")); err == nil {
			events, err = s.repos.Events.ListBetween(r.Context(), patientID, from, to)
		}
	}
	s.metrics.RecordFixtureLookup("events", err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, events)
}

// dashboardHandler handles the admin reports dashboard
func (s *Service) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to, err := s.rangeParams(q.Get("from"), q.Get("to"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	report, err := s.reports.Dashboard(r.Context(), from, to)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, report)
}

// viewsHandler returns the navigation of the request's role
func (s *Service) viewsHandler(w http.ResponseWriter, r *http.Request) {
	view, err := ViewFor(roleOf(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, view)
}

// rangeParams parses a from/to pair; missing ends default to the bounds of
// the current month
func (s *Service) rangeParams(rawFrom, rawTo string) (from, to calendar.Date, err error) {
	bounds := calendar.MonthBounds(s.calendar.Today().Year, s.calendar.Today().Month)
	from, to = bounds.First, bounds.Last

	if rawFrom != "" {
		if from, err = dateParam(rawFrom, "from"); err != nil {
			return
		}
	}
	if rawTo != "" {
		if to, err = dateParam(rawTo, "to"); err != nil {
			return
		}
	}
	return from, to, nil
}

func intParam(raw string, def, lo, hi int, name string) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		return 0, types.NewValidationError(types.ErrCodeInvalidInput, fmt.Sprintf("invalid %s", name), map[string]interface{}{
			name:  raw,
			"min": lo,
			"max": hi,
		})
	}
	return v, nil
}

func dateParam(raw, name string) (calendar.Date, error) {
	d, err := calendar.ParseDate(raw)
	if err != nil {
		return calendar.Date{}, types.NewValidationError(types.ErrCodeInvalidDate, fmt.Sprintf("invalid %s", name), map[string]interface{}{
			name:     raw,
			"format": calendar.DateLayout,
		})
	}
	return d, nil
}

// errorBody is the JSON shape of every error response
type errorBody struct {
	Error   string                 `json:"error"`
	Status  int                    `json:"status"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// writeError maps err onto an HTTP status and writes it as JSON
func (s *Service) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch types.ErrorTypeOf(err) {
	case types.ErrorTypeValidation:
		status = http.StatusBadRequest
	case types.ErrorTypeNotFound:
		status = http.StatusNotFound
	}

	body := errorBody{Error: err.Error(), Status: status}
	if pe, ok := types.AsPortalError(err); ok {
		body.Error = pe.Message
		body.Code = pe.Code
		body.Details = pe.Details
	}
	if status == http.StatusInternalServerError {
		s.logger.WithContext(r.Context()).WithError(err).Error("Request failed")
		// internal causes stay in the log
		body.Error = "internal error"
		body.Details = nil
	}

	writeJSON(w, status, body)
}

// writeJSONResponse writes a JSON response
func (s *Service) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	if err := writeJSON(w, statusCode, data); err != nil {
		s.logger.WithError(err).Error("Failed to encode JSON response")
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}
