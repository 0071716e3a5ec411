package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/yusufkecer/hospital-backend/internal/domain"
)

type AppointmentRepository struct {
	db *sql.DB
}

func NewAppointmentRepository(db *sql.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

const appointmentColumns = `id, patient_id, doctor_id, department, scheduled_at, reason, notes, status, created_at, updated_at`

func scanAppointment(row interface{ Scan(...any) error }) (*domain.Appointment, error) {
	var a domain.Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.Department, &a.ScheduledAt, &a.Reason, &a.Notes,
		&a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AppointmentRepository) Create(ctx context.Context, a *domain.Appointment) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO appointments (patient_id, doctor_id, department, scheduled_at, reason, notes, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.PatientID, a.DoctorID, a.Department, a.ScheduledAt.UTC(), a.Reason, a.Notes, a.Status,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create appointment: %w", err)
	}
	return result.LastInsertId()
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	a, err := scanAppointment(r.db.QueryRowContext(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return a, nil
}

// appointmentWhere builds the WHERE clause shared by List and Count.
func appointmentWhere(f domain.AppointmentFilter) (string, []interface{}, error) {
	var where []string
	var args []interface{}
	if f.PatientID > 0 {
		where = append(where, "patient_id = ?")
		args = append(args, f.PatientID)
	}
	if f.DoctorID > 0 {
		where = append(where, "doctor_id = ?")
		args = append(args, f.DoctorID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.Department != "" {
		where = append(where, "department = ?")
		args = append(args, f.Department)
	}
	if f.Date != "" {
		day, err := time.Parse("2006-01-02", f.Date)
		if err != nil {
			return "", nil, fmt.Errorf("invalid date %q: %w", f.Date, err)
		}
		where = append(where, "scheduled_at >= ? AND scheduled_at < ?")
		args = append(args, day, day.AddDate(0, 0, 1))
	}
	if f.Upcoming {
		where = append(where, "scheduled_at >= ?")
		args = append(args, time.Now().UTC())
	}
	if len(where) == 0 {
		return "", args, nil
	}
	return " WHERE " + strings.Join(where, " AND "), args, nil
}

func (r *AppointmentRepository) List(ctx context.Context, f domain.AppointmentFilter) ([]domain.Appointment, error) {
	where, args, err := appointmentWhere(f)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + appointmentColumns + ` FROM appointments` + where +
		` ORDER BY scheduled_at ASC, id ASC LIMIT ? OFFSET ?`
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer rows.Close()

	var appointments []domain.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appointments = append(appointments, *a)
	}
	return appointments, rows.Err()
}

// Count returns how many appointments match f, ignoring its page bounds.
func (r *AppointmentRepository) Count(ctx context.Context, f domain.AppointmentFilter) (int, error) {
	where, args, err := appointmentWhere(f)
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM appointments`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return n, nil
}

func (r *AppointmentRepository) Update(ctx context.Context, a *domain.Appointment) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE appointments SET patient_id = ?, doctor_id = ?, department = ?, scheduled_at = ?,
			reason = ?, notes = ?, status = ?
		 WHERE id = ?`,
		a.PatientID, a.DoctorID, a.Department, a.ScheduledAt.UTC(), a.Reason, a.Notes, a.Status, a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error {
	_, err := r.db.ExecContext(ctx, `UPDATE appointments SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete appointment: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete appointment: %w", err)
	}
	return n > 0, nil
}

// HasConflict reports whether the doctor already holds an active appointment
// at exactly the given time. excludeID skips the appointment being edited.
func (r *AppointmentRepository) HasConflict(ctx context.Context, doctorID int64, at time.Time, excludeID int64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM appointments
		 WHERE doctor_id = ? AND scheduled_at = ? AND id <> ? AND status IN ('scheduled', 'confirmed')`,
		doctorID, at.UTC(), excludeID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check appointment conflict: %w", err)
	}
	return n > 0, nil
}
