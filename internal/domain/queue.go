package domain

import "time"

type QueueStatus string

const (
	QueueWaiting    QueueStatus = "waiting"
	QueueInProgress QueueStatus = "in-progress"
	QueueCompleted  QueueStatus = "completed"
	QueueSkipped    QueueStatus = "skipped"
)

func (s QueueStatus) Valid() bool {
	switch s {
	case QueueWaiting, QueueInProgress, QueueCompleted, QueueSkipped:
		return true
	}
	return false
}

type QueueEntry struct {
	ID                   int64       `json:"id"`
	PatientID            int64       `json:"patient_id"`
	AppointmentID        *int64      `json:"appointment_id"`
	Department           string      `json:"department"`
	QueueNumber          int         `json:"queue_number"`
	Status               QueueStatus `json:"status"`
	EstimatedWaitMinutes int         `json:"estimated_wait_minutes"`
	CreatedAt            time.Time   `json:"created_at"`
}

func (q *QueueEntry) Validate() error {
	if q.PatientID <= 0 {
		return invalid("patient_id is required", "patient_id")
	}
	if blank(q.Department) {
		return invalid("department is required", "department")
	}
	return nil
}
