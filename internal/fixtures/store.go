// Package fixtures serves the portal's demo data through typed, read-only
// repositories.
package fixtures

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"os"
	"sort"

	"github.com/medrex/onco-portal/pkg/types"
	"gopkg.in/yaml.v3"
)

//go:embed data/portal.yaml
var embedded []byte

// Dataset is the on-disk shape of a fixture file
type Dataset struct {
	Patients   []types.Patient       `yaml:"patients"`
	Events     []types.Event         `yaml:"events"`
	Biomarkers []types.Biomarker     `yaml:"biomarkers"`
	Timeline   []types.TimelineEntry `yaml:"timeline"`
}

// Store holds an immutable, indexed copy of a Dataset
type Store struct {
	version    string
	patientIDs []string
	patients   map[string]types.Patient
	events     []types.Event
	byPatient  map[string][]types.Event
	biomarkers map[string][]types.Biomarker
	timeline   map[string][]types.TimelineEntry
}

// Load reads fixtures from path, or the embedded demo set when path is empty
func Load(path string) (*Store, error) {
	if path == "" {
		return Parse(embedded)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.NewInternalError(types.ErrCodeFixtureLoad, "failed to read fixture file", err)
	}
	return Parse(data)
}

// Parse builds a Store from YAML fixture data
func Parse(data []byte) (*Store, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, types.NewInternalError(types.ErrCodeFixtureLoad, "failed to parse fixture data", err)
	}

	sum := sha256.Sum256(data)
	return newStore(&ds, hex.EncodeToString(sum[:8]))
}

func newStore(ds *Dataset, version string) (*Store, error) {
	s := &Store{
		version:    version,
		patients:   make(map[string]types.Patient, len(ds.Patients)),
		byPatient:  make(map[string][]types.Event),
		biomarkers: make(map[string][]types.Biomarker),
		timeline:   make(map[string][]types.TimelineEntry),
	}

	for _, p := range ds.Patients {
		if p.ID == "" {
			return nil, fixtureError("patient without id", nil)
		}
		if _, dup := s.patients[p.ID]; dup {
			return nil, fixtureError("duplicate patient id", map[string]interface{}{"patient_id": p.ID})
		}
		s.patients[p.ID] = p
		s.patientIDs = append(s.patientIDs, p.ID)
	}
	sort.Strings(s.patientIDs)

	seen := make(map[string]bool, len(ds.Events))
	for _, e := range ds.Events {
		if e.ID == "" || seen[e.ID] {
			return nil, fixtureError("missing or duplicate event id", map[string]interface{}{"event_id": e.ID})
		}
		seen[e.ID] = true
		if !e.Type.Valid() {
			return nil, fixtureError("unknown event type", map[string]interface{}{"event_id": e.ID, "type": e.Type})
		}
		if !e.Status.Valid() {
			return nil, fixtureError("unknown event status", map[string]interface{}{"event_id": e.ID, "status": e.Status})
		}
		if err := s.requirePatient(e.PatientID, e.ID); err != nil {
			return nil, err
		}
		// event dates are not validated here; unparsable dates simply never
		// match a calendar day
		s.events = append(s.events, e)
		s.byPatient[e.PatientID] = append(s.byPatient[e.PatientID], e)
	}

	for _, b := range ds.Biomarkers {
		if err := s.requirePatient(b.PatientID, b.Name); err != nil {
			return nil, err
		}
		s.biomarkers[b.PatientID] = append(s.biomarkers[b.PatientID], b)
	}

	for _, entry := range ds.Timeline {
		if err := s.requirePatient(entry.PatientID, entry.Title); err != nil {
			return nil, err
		}
		s.timeline[entry.PatientID] = append(s.timeline[entry.PatientID], entry)
	}
	for id := range s.timeline {
		entries := s.timeline[id]
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Date < entries[j].Date
		})
	}

	return s, nil
}

func (s *Store) requirePatient(patientID, ref string) error {
	if _, ok := s.patients[patientID]; !ok {
		return fixtureError("record references unknown patient", map[string]interface{}{
			"patient_id": patientID,
			"record":     ref,
		})
	}
	return nil
}

func fixtureError(message string, details map[string]interface{}) error {
	return types.NewValidationError(types.ErrCodeFixtureLoad, message, details)
}

// Version identifies the loaded data; it changes whenever the data does
func (s *Store) Version() string {
	return s.version
}

// Counts reports how many records of each kind are loaded
func (s *Store) Counts() map[string]int {
	biomarkers, timeline := 0, 0
	for _, b := range s.biomarkers {
		biomarkers += len(b)
	}
	for _, t := range s.timeline {
		timeline += len(t)
	}
	return map[string]int{
		"patients":   len(s.patients),
		"events":     len(s.events),
		"biomarkers": biomarkers,
		"timeline":   timeline,
	}
}

// Patients returns the patient repository view of the store
func (s *Store) Patients() *PatientRepo {
	return &PatientRepo{store: s}
}

// Events returns the event repository view of the store
func (s *Store) Events() *EventRepo {
	return &EventRepo{store: s}
}

// Biomarkers returns the biomarker repository view of the store
func (s *Store) Biomarkers() *BiomarkerRepo {
	return &BiomarkerRepo{store: s}
}

// Timeline returns the timeline repository view of the store
func (s *Store) Timeline() *TimelineRepo {
	return &TimelineRepo{store: s}
}

func patientNotFound(patientID string) error {
	return types.NewNotFoundError(types.ErrCodePatientNotFound, fmt.Sprintf("patient %s not found", patientID))
}
