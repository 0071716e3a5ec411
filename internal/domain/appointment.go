package domain

import (
	"time"
)

type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentNoShow    AppointmentStatus = "no-show"
)

// appointmentTransitions lists the statuses reachable from each status.
// Completed, cancelled and no-show are terminal.
var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentScheduled: {AppointmentConfirmed, AppointmentCancelled, AppointmentCompleted, AppointmentNoShow},
	AppointmentConfirmed: {AppointmentCompleted, AppointmentCancelled, AppointmentNoShow},
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentScheduled, AppointmentConfirmed, AppointmentCompleted, AppointmentCancelled, AppointmentNoShow:
		return true
	}
	return false
}

func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Appointment struct {
	ID          int64             `json:"id"`
	PatientID   int64             `json:"patient_id"`
	DoctorID    int64             `json:"doctor_id"`
	Department  string            `json:"department"`
	ScheduledAt time.Time         `json:"scheduled_at"`
	Reason      *string           `json:"reason"`
	Notes       *string           `json:"notes"`
	Status      AppointmentStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (a *Appointment) Validate() error {
	if a.PatientID <= 0 {
		return invalid("patient_id is required", "patient_id")
	}
	if a.DoctorID <= 0 {
		return invalid("doctor_id is required", "doctor_id")
	}
	if blank(a.Department) {
		return invalid("department is required", "department")
	}
	if a.ScheduledAt.IsZero() {
		return invalid("scheduled_at is required", "scheduled_at")
	}
	if a.Status == "" {
		a.Status = AppointmentScheduled
	}
	if !a.Status.Valid() {
		return invalid("invalid appointment status: "+string(a.Status), "status")
	}
	return nil
}

type StatusUpdate struct {
	Status string `json:"status"`
}
