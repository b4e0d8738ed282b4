package fixtures

import (
	"context"

	"github.com/medrex/onco-portal/pkg/calendar"
	"github.com/medrex/onco-portal/pkg/interfaces"
	"github.com/medrex/onco-portal/pkg/types"
)

var (
	_ interfaces.PatientRepository   = (*PatientRepo)(nil)
	_ interfaces.EventRepository     = (*EventRepo)(nil)
	_ interfaces.BiomarkerRepository = (*BiomarkerRepo)(nil)
	_ interfaces.TimelineRepository  = (*TimelineRepo)(nil)
)

// PatientRepo implements interfaces.PatientRepository over a Store
type PatientRepo struct {
	store *Store
}

// Get returns a copy of the patient with the given ID
func (r *PatientRepo) Get(ctx context.Context, patientID string) (*types.Patient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, ok := r.store.patients[patientID]
	if !ok {
		return nil, patientNotFound(patientID)
	}
	p.CareTeam = append([]types.CareTeam(nil), p.CareTeam...)
	return &p, nil
}

// List returns every patient ordered by ID
func (r *PatientRepo) List(ctx context.Context) ([]*types.Patient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	patients := make([]*types.Patient, 0, len(r.store.patientIDs))
	for _, id := range r.store.patientIDs {
		p, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}
	return patients, nil
}

// EventRepo implements interfaces.EventRepository over a Store
type EventRepo struct {
	store *Store
}

// ListAll returns every event in fixture order
func (r *EventRepo) ListAll(ctx context.Context) ([]types.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]types.Event{}, r.store.events...), nil
}

// ListByPatient returns the patient's events in fixture order
func (r *EventRepo) ListByPatient(ctx context.Context, patientID string) ([]types.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, ok := r.store.patients[patientID]; !ok {
		return nil, patientNotFound(patientID)
	}
	return append([]types.Event{}, r.store.byPatient[patientID]...), nil
}

// ListBetween returns events dated within [from, to]. An empty patientID
// selects events of every patient.
func (r *EventRepo) ListBetween(ctx context.Context, patientID string, from, to calendar.Date) ([]types.Event, error) {
	var (
		events []types.Event
		err    error
	)
	if patientID == "" {
		events, err = r.ListAll(ctx)
	} else {
		events, err = r.ListByPatient(ctx, patientID)
	}
	if err != nil {
		return nil, err
	}
	return calendar.EventsBetween(events, from, to), nil
}

// BiomarkerRepo implements interfaces.BiomarkerRepository over a Store
type BiomarkerRepo struct {
	store *Store
}

// ListByPatient returns the patient's biomarker results
func (r *BiomarkerRepo) ListByPatient(ctx context.Context, patientID string) ([]types.Biomarker, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, ok := r.store.patients[patientID]; !ok {
		return nil, patientNotFound(patientID)
	}
	return append([]types.Biomarker{}, r.store.biomarkers[patientID]...), nil
}

// TimelineRepo implements interfaces.TimelineRepository over a Store
type TimelineRepo struct {
	store *Store
}

// ListByPatient returns the patient's timeline, oldest first
func (r *TimelineRepo) ListByPatient(ctx context.Context, patientID string) ([]types.TimelineEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, ok := r.store.patients[patientID]; !ok {
		return nil, patientNotFound(patientID)
	}
	return append([]types.TimelineEntry{}, r.store.timeline[patientID]...), nil
}
