package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/yusufkecer/hospital-backend/internal/domain"
)

type QueueRepository struct {
	db *sql.DB
}

func NewQueueRepository(db *sql.DB) *QueueRepository {
	return &QueueRepository{db: db}
}

const queueColumns = `id, patient_id, appointment_id, department, queue_number, status, created_at`

func scanQueueEntry(row interface{ Scan(...any) error }) (*domain.QueueEntry, error) {
	var q domain.QueueEntry
	if err := row.Scan(&q.ID, &q.PatientID, &q.AppointmentID, &q.Department, &q.QueueNumber, &q.Status, &q.CreatedAt); err != nil {
		return nil, err
	}
	return &q, nil
}

// Join appends the entry to the department's queue for the given day and
// assigns the next sequential queue number. The number is allocated under a
// row lock so concurrent joins never share a number.
func (r *QueueRepository) Join(ctx context.Context, q *domain.QueueEntry, day string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin queue transaction: %w", err)
	}
	defer tx.Rollback()

	var last int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(queue_number), 0) FROM queue_entries WHERE department = ? AND queue_date = ? FOR UPDATE`,
		q.Department, day,
	).Scan(&last)
	if err != nil {
		return fmt.Errorf("failed to allocate queue number: %w", err)
	}

	q.QueueNumber = last + 1
	if q.Status == "" {
		q.Status = domain.QueueWaiting
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO queue_entries (patient_id, appointment_id, department, queue_date, queue_number, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		q.PatientID, q.AppointmentID, q.Department, day, q.QueueNumber, q.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to join queue: %w", err)
	}
	if q.ID, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("failed to join queue: %w", err)
	}
	return tx.Commit()
}

func (r *QueueRepository) GetByID(ctx context.Context, id int64) (*domain.QueueEntry, error) {
	q, err := scanQueueEntry(r.db.QueryRowContext(ctx,
		`SELECT `+queueColumns+` FROM queue_entries WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get queue entry: %w", err)
	}
	return q, nil
}

// List returns one day's queue ordered by department and queue number.
func (r *QueueRepository) List(ctx context.Context, f domain.QueueFilter) ([]domain.QueueEntry, error) {
	query := `SELECT ` + queueColumns + ` FROM queue_entries WHERE queue_date = ?`
	args := []interface{}{f.Date}
	if f.Department != "" {
		query += ` AND department = ?`
		args = append(args, f.Department)
	}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	query += ` ORDER BY department ASC, queue_number ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}
	defer rows.Close()

	var entries []domain.QueueEntry
	for rows.Next() {
		q, err := scanQueueEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan queue entry: %w", err)
		}
		entries = append(entries, *q)
	}
	return entries, rows.Err()
}

// QueueDate returns the day an entry was queued on, formatted YYYY-MM-DD.
func (r *QueueRepository) QueueDate(ctx context.Context, id int64) (string, error) {
	var day string
	err := r.db.QueryRowContext(ctx,
		`SELECT DATE_FORMAT(queue_date, '%Y-%m-%d') FROM queue_entries WHERE id = ?`, id,
	).Scan(&day)
	if err != nil {
		return "", fmt.Errorf("failed to get queue date: %w", err)
	}
	return day, nil
}

func (r *QueueRepository) UpdateStatus(ctx context.Context, id int64, status domain.QueueStatus) error {
	_, err := r.db.ExecContext(ctx, `UPDATE queue_entries SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update queue status: %w", err)
	}
	return nil
}

func (r *QueueRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM queue_entries WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete queue entry: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete queue entry: %w", err)
	}
	return n > 0, nil
}
