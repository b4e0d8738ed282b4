package types

// Event represents a calendar entry shown in the portal (appointment, treatment or test)
type Event struct {
	ID          string      `json:"id" yaml:"id"`
	PatientID   string      `json:"patient_id" yaml:"patient_id"`
	Title       string      `json:"title" yaml:"title"`
	Date        string      `json:"date" yaml:"date"`
	Time        string      `json:"time,omitempty" yaml:"time"`
	Type        EventType   `json:"type" yaml:"type"`
	Status      EventStatus `json:"status" yaml:"status"`
	Location    string      `json:"location,omitempty" yaml:"location"`
	Description string      `json:"description,omitempty" yaml:"description"`
}

// EventType represents calendar event type values
type EventType string

const (
	EventTypeAppointment EventType = "appointment"
	EventTypeTreatment   EventType = "treatment"
	EventTypeTest        EventType = "test"
)

// Valid reports whether t is a known event type
func (t EventType) Valid() bool {
	switch t {
	case EventTypeAppointment, EventTypeTreatment, EventTypeTest:
		return true
	}
	return false
}

// EventStatus represents calendar event status values
type EventStatus string

const (
	EventStatusScheduled EventStatus = "scheduled"
	EventStatusConfirmed EventStatus = "confirmed"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
	EventStatusPending   EventStatus = "pending"
)

// Valid reports whether s is a known event status
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusScheduled, EventStatusConfirmed, EventStatusCompleted, EventStatusCancelled, EventStatusPending:
		return true
	}
	return false
}

// EventTypes lists every event type in display order
func EventTypes() []EventType {
	return []EventType{EventTypeAppointment, EventTypeTreatment, EventTypeTest}
}

// EventStatuses lists every event status in display order
func EventStatuses() []EventStatus {
	return []EventStatus{
		EventStatusScheduled,
		EventStatusConfirmed,
		EventStatusPending,
		EventStatusCompleted,
		EventStatusCancelled,
	}
}
