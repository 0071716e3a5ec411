package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yusufkecer/hospital-backend/internal/domain"
)

var ErrUnknownRole = errors.New("unknown role")

type AccountCounter interface {
	Count(ctx context.Context) (int, error)
}

type PatientReader interface {
	Count(ctx context.Context) (int, error)
	GetByAccountID(ctx context.Context, accountID int64) (*domain.Patient, error)
}

type AppointmentLister interface {
	List(ctx context.Context, f domain.AppointmentFilter) ([]domain.Appointment, error)
	Count(ctx context.Context, f domain.AppointmentFilter) (int, error)
}

type QueueLister interface {
	List(ctx context.Context, f domain.QueueFilter) ([]domain.QueueEntry, error)
}

type UnreadCounter interface {
	CountUnread(ctx context.Context, recipientID int64) (int, error)
}

// DashboardService assembles the per-role summary shown after login.
type DashboardService struct {
	accounts     AccountCounter
	patients     PatientReader
	appointments AppointmentLister
	queue        QueueLister
	messages     UnreadCounter
	avgConsult   int
	now          func() time.Time
}

func NewDashboardService(
	accounts AccountCounter,
	patients PatientReader,
	appointments AppointmentLister,
	queue QueueLister,
	messages UnreadCounter,
	avgConsultMinutes int,
) *DashboardService {
	return &DashboardService{
		accounts:     accounts,
		patients:     patients,
		appointments: appointments,
		queue:        queue,
		messages:     messages,
		avgConsult:   avgConsultMinutes,
		now:          time.Now,
	}
}

func (s *DashboardService) Build(ctx context.Context, accountID int64, role domain.Role) (*domain.Dashboard, error) {
	d := &domain.Dashboard{Role: role}
	var err error

	switch role {
	case domain.RoleAdmin:
		d.Admin, err = s.admin(ctx)
	case domain.RoleDoctor:
		d.Doctor, err = s.doctor(ctx, accountID)
	case domain.RoleReception:
		d.Reception, err = s.reception(ctx)
	case domain.RolePatient:
		d.Patient, err = s.patient(ctx, accountID)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DashboardService) today() string {
	return s.now().UTC().Format("2006-01-02")
}

func (s *DashboardService) todaysAppointments(ctx context.Context, doctorID int64) ([]domain.Appointment, error) {
	f := domain.AppointmentFilter{DoctorID: doctorID, Date: s.today()}
	f.Limit = domain.MaxLimit
	appts, err := s.appointments.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if appts == nil {
		appts = []domain.Appointment{}
	}
	return appts, nil
}

func (s *DashboardService) waitingQueue(ctx context.Context) ([]domain.QueueEntry, error) {
	entries, err := s.queue.List(ctx, domain.QueueFilter{Date: s.today(), Status: string(domain.QueueWaiting)})
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.QueueEntry{}
	}
	EstimateWaits(entries, s.avgConsult)
	return entries, nil
}

func (s *DashboardService) admin(ctx context.Context) (*domain.AdminDashboard, error) {
	accounts, err := s.accounts.Count(ctx)
	if err != nil {
		return nil, err
	}
	patients, err := s.patients.Count(ctx)
	if err != nil {
		return nil, err
	}
	appts, err := s.appointments.Count(ctx, domain.AppointmentFilter{Date: s.today()})
	if err != nil {
		return nil, err
	}
	waiting, err := s.waitingQueue(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.AdminDashboard{
		Accounts:          accounts,
		Patients:          patients,
		AppointmentsToday: appts,
		Waiting:           len(waiting),
	}, nil
}

func (s *DashboardService) doctor(ctx context.Context, accountID int64) (*domain.DoctorDashboard, error) {
	appts, err := s.todaysAppointments(ctx, accountID)
	if err != nil {
		return nil, err
	}
	waiting, err := s.waitingQueue(ctx)
	if err != nil {
		return nil, err
	}
	unread, err := s.messages.CountUnread(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &domain.DoctorDashboard{
		AppointmentsToday: appts,
		Waiting:           len(waiting),
		UnreadMessages:    unread,
	}, nil
}

func (s *DashboardService) reception(ctx context.Context) (*domain.ReceptionDashboard, error) {
	appts, err := s.todaysAppointments(ctx, 0)
	if err != nil {
		return nil, err
	}
	waiting, err := s.waitingQueue(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.ReceptionDashboard{AppointmentsToday: appts, Queue: waiting}, nil
}

func (s *DashboardService) patient(ctx context.Context, accountID int64) (*domain.PatientDashboard, error) {
	d := &domain.PatientDashboard{Upcoming: []domain.Appointment{}}

	p, err := s.patients.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	d.Patient = p

	if p != nil {
		f := domain.AppointmentFilter{PatientID: p.ID, Upcoming: true}
		f.Limit = 10
		upcoming, err := s.appointments.List(ctx, f)
		if err != nil {
			return nil, err
		}
		if upcoming != nil {
			d.Upcoming = upcoming
		}
	}

	if d.UnreadMessages, err = s.messages.CountUnread(ctx, accountID); err != nil {
		return nil, err
	}
	return d, nil
}
