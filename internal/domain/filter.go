package domain

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Page is embedded by list filters; values are clamped by Normalize.
type Page struct {
	Limit  int `schema:"limit,omitempty"`
	Offset int `schema:"offset,omitempty"`
}

func (p *Page) Normalize() {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

type PatientFilter struct {
	Page
	Search string `schema:"search,omitempty"`
}

type AppointmentFilter struct {
	Page
	PatientID  int64  `schema:"patient_id,omitempty"`
	DoctorID   int64  `schema:"doctor_id,omitempty"`
	Status     string `schema:"status,omitempty"`
	Department string `schema:"department,omitempty"`
	// Date restricts results to one calendar day, YYYY-MM-DD.
	Date string `schema:"date,omitempty"`
	// Upcoming restricts results to appointments scheduled from now on.
	Upcoming bool `schema:"upcoming,omitempty"`
}

type FitnessFilter struct {
	Page
	PatientID int64  `schema:"patient_id,omitempty"`
	From      string `schema:"from,omitempty"`
	To        string `schema:"to,omitempty"`
}

type QueueFilter struct {
	Department string `schema:"department,omitempty"`
	Status     string `schema:"status,omitempty"`
	// Date defaults to today.
	Date string `schema:"date,omitempty"`
}

type ActivityFilter struct {
	Page
	AccountID int64  `schema:"account_id,omitempty"`
	Resource  string `schema:"resource,omitempty"`
}

type InsightFilter struct {
	Page
	PatientID int64  `schema:"patient_id,omitempty"`
	Kind      string `schema:"kind,omitempty"`
}
