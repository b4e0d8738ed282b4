package interfaces

import (
	"context"
	"net/http"

	"github.com/medrex/onco-portal/pkg/calendar"
	"github.com/medrex/onco-portal/pkg/types"
)

// PatientRepository provides read access to patient records
type PatientRepository interface {
	// Get returns the patient or a not found error
	Get(ctx context.Context, patientID string) (*types.Patient, error)
	List(ctx context.Context) ([]*types.Patient, error)
}

// EventRepository provides read access to calendar events
type EventRepository interface {
	ListAll(ctx context.Context) ([]types.Event, error)
	ListByPatient(ctx context.Context, patientID string) ([]types.Event, error)
	ListBetween(ctx context.Context, patientID string, from, to calendar.Date) ([]types.Event, error)
}

// BiomarkerRepository provides read access to biomarker results
type BiomarkerRepository interface {
	ListByPatient(ctx context.Context, patientID string) ([]types.Biomarker, error)
}

// TimelineRepository provides read access to care timelines
type TimelineRepository interface {
	ListByPatient(ctx context.Context, patientID string) ([]types.TimelineEntry, error)
}

// FallbackRenderer renders a response after a handler failed unexpectedly
type FallbackRenderer interface {
	RenderFallback(w http.ResponseWriter, r *http.Request, recovered interface{})
}
