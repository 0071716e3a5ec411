package domain

// Dashboard is the role-specific summary returned by
// GET /api/users/me/dashboard. Only the section matching Role is set.
type Dashboard struct {
	Role      Role                `json:"role"`
	Admin     *AdminDashboard     `json:"admin,omitempty"`
	Doctor    *DoctorDashboard    `json:"doctor,omitempty"`
	Reception *ReceptionDashboard `json:"reception,omitempty"`
	Patient   *PatientDashboard   `json:"patient,omitempty"`
}

type AdminDashboard struct {
	Accounts          int `json:"accounts"`
	Patients          int `json:"patients"`
	AppointmentsToday int `json:"appointments_today"`
	Waiting           int `json:"waiting"`
}

type DoctorDashboard struct {
	AppointmentsToday []Appointment `json:"appointments_today"`
	Waiting           int           `json:"waiting"`
	UnreadMessages    int           `json:"unread_messages"`
}

type ReceptionDashboard struct {
	AppointmentsToday []Appointment `json:"appointments_today"`
	Queue             []QueueEntry  `json:"queue"`
}

type PatientDashboard struct {
	Patient        *Patient      `json:"patient"`
	Upcoming       []Appointment `json:"upcoming"`
	UnreadMessages int           `json:"unread_messages"`
}
