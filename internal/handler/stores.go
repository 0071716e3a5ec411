package handler

import (
	"context"
	"time"

	"github.com/yusufkecer/hospital-backend/internal/domain"
	"github.com/yusufkecer/hospital-backend/internal/realtime"
)

// The interfaces below are satisfied by the repository package; handlers
// depend on them so tests can swap in memory-backed fakes.

type AccountStore interface {
	Create(ctx context.Context, a *domain.Account) (int64, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	List(ctx context.Context, role domain.Role) ([]domain.Account, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type ResetTokenStore interface {
	Create(ctx context.Context, accountID int64, code string, expiresAt time.Time) error
	FindValid(ctx context.Context, accountID int64, code string, now time.Time) (*domain.PasswordResetToken, error)
	Consume(ctx context.Context, id int64) (bool, error)
	RevokeAll(ctx context.Context, accountID int64) error
}

type PatientStore interface {
	Create(ctx context.Context, p *domain.Patient) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Patient, error)
	GetByAccountID(ctx context.Context, accountID int64) (*domain.Patient, error)
	List(ctx context.Context, f domain.PatientFilter) ([]domain.Patient, error)
	Update(ctx context.Context, p *domain.Patient) error
	UpdateBMI(ctx context.Context, id int64, height, weight, bmi float64, category string) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type AppointmentStore interface {
	Create(ctx context.Context, a *domain.Appointment) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	List(ctx context.Context, f domain.AppointmentFilter) ([]domain.Appointment, error)
	Update(ctx context.Context, a *domain.Appointment) error
	UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error
	Delete(ctx context.Context, id int64) (bool, error)
	HasConflict(ctx context.Context, doctorID int64, at time.Time, excludeID int64) (bool, error)
}

type FitnessStore interface {
	Create(ctx context.Context, f *domain.FitnessData) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.FitnessData, error)
	List(ctx context.Context, f domain.FitnessFilter) ([]domain.FitnessData, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type MessageStore interface {
	Create(ctx context.Context, m *domain.Message) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Message, error)
	Conversation(ctx context.Context, a, b int64, limit int) ([]domain.Message, error)
	Inbox(ctx context.Context, recipientID int64, limit int) ([]domain.Message, error)
	MarkRead(ctx context.Context, id int64) error
}

type QueueStore interface {
	Join(ctx context.Context, q *domain.QueueEntry, day string) error
	GetByID(ctx context.Context, id int64) (*domain.QueueEntry, error)
	List(ctx context.Context, f domain.QueueFilter) ([]domain.QueueEntry, error)
	QueueDate(ctx context.Context, id int64) (string, error)
	UpdateStatus(ctx context.Context, id int64, status domain.QueueStatus) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type ActivityStore interface {
	Create(ctx context.Context, l *domain.ActivityLog) error
	List(ctx context.Context, f domain.ActivityFilter) ([]domain.ActivityLog, error)
}

type InsightStore interface {
	Create(ctx context.Context, i *domain.AIInsight) error
	GetByID(ctx context.Context, id string) (*domain.AIInsight, error)
	List(ctx context.Context, f domain.InsightFilter) ([]domain.AIInsight, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type Mailer interface {
	SendPasswordReset(ctx context.Context, to, code string) error
	SendAppointmentConfirmation(ctx context.Context, to, patientName string, a *domain.Appointment) error
}

type Publisher interface {
	Publish(accountID int64, evt realtime.Event) error
}
