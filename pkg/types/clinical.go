package types

// Patient represents a patient record served from the portal fixtures
type Patient struct {
	ID          string     `json:"id" yaml:"id"`
	MRN         string     `json:"mrn" yaml:"mrn"`
	FirstName   string     `json:"first_name" yaml:"first_name"`
	LastName    string     `json:"last_name" yaml:"last_name"`
	DateOfBirth string     `json:"date_of_birth" yaml:"date_of_birth"`
	Diagnosis   string     `json:"diagnosis" yaml:"diagnosis"`
	Stage       string     `json:"stage,omitempty" yaml:"stage"`
	NavigatorID string     `json:"navigator_id,omitempty" yaml:"navigator_id"`
	CareTeam    []CareTeam `json:"care_team,omitempty" yaml:"care_team"`
	Status      string     `json:"status" yaml:"status"`
}

// FullName returns the patient's display name
func (p *Patient) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// CareTeam is a member of a patient's care team
type CareTeam struct {
	Name string `json:"name" yaml:"name"`
	Role string `json:"role" yaml:"role"`
}

// BiomarkerStatus classifies a biomarker result against its reference range
type BiomarkerStatus string

const (
	BiomarkerNormal   BiomarkerStatus = "normal"
	BiomarkerHigh     BiomarkerStatus = "high"
	BiomarkerLow      BiomarkerStatus = "low"
	BiomarkerCritical BiomarkerStatus = "critical"
)

// Biomarker is a single lab marker measurement
type Biomarker struct {
	PatientID      string          `json:"patient_id" yaml:"patient_id"`
	Name           string          `json:"name" yaml:"name"`
	Value          float64         `json:"value" yaml:"value"`
	Unit           string          `json:"unit" yaml:"unit"`
	ReferenceRange string          `json:"reference_range" yaml:"reference_range"`
	Status         BiomarkerStatus `json:"status" yaml:"status"`
	MeasuredOn     string          `json:"measured_on" yaml:"measured_on"`
}

// TimelineEntry is an entry of a patient's care timeline
type TimelineEntry struct {
	PatientID string `json:"patient_id" yaml:"patient_id"`
	Date      string `json:"date" yaml:"date"`
	Kind      string `json:"kind" yaml:"kind"`
	Title     string `json:"title" yaml:"title"`
	Detail    string `json:"detail,omitempty" yaml:"detail"`
}
