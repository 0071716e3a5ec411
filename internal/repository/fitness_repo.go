package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/yusufkecer/hospital-backend/internal/domain"
)

type FitnessRepository struct {
	db *sql.DB
}

func NewFitnessRepository(db *sql.DB) *FitnessRepository {
	return &FitnessRepository{db: db}
}

const fitnessColumns = `id, patient_id, recorded_on, steps, heart_rate, calories_burned, sleep_hours, weight, notes, created_at`

func scanFitness(row interface{ Scan(...any) error }) (*domain.FitnessData, error) {
	var f domain.FitnessData
	err := row.Scan(&f.ID, &f.PatientID, &f.RecordedOn, &f.Steps, &f.HeartRate, &f.CaloriesBurned,
		&f.SleepHours, &f.Weight, &f.Notes, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FitnessRepository) Create(ctx context.Context, f *domain.FitnessData) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO fitness_data (patient_id, recorded_on, steps, heart_rate, calories_burned, sleep_hours, weight, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.PatientID, f.RecordedOn, f.Steps, f.HeartRate, f.CaloriesBurned, f.SleepHours, f.Weight, f.Notes,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create fitness data: %w", err)
	}
	return result.LastInsertId()
}

func (r *FitnessRepository) GetByID(ctx context.Context, id int64) (*domain.FitnessData, error) {
	f, err := scanFitness(r.db.QueryRowContext(ctx,
		`SELECT `+fitnessColumns+` FROM fitness_data WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fitness data: %w", err)
	}
	return f, nil
}

func (r *FitnessRepository) List(ctx context.Context, f domain.FitnessFilter) ([]domain.FitnessData, error) {
	query := `SELECT ` + fitnessColumns + ` FROM fitness_data WHERE patient_id = ?`
	args := []interface{}{f.PatientID}
	if f.From != "" {
		query += ` AND recorded_on >= ?`
		args = append(args, f.From)
	}
	if f.To != "" {
		query += ` AND recorded_on <= ?`
		args = append(args, f.To)
	}
	query += ` ORDER BY recorded_on ASC, id ASC LIMIT ? OFFSET ?`
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list fitness data: %w", err)
	}
	defer rows.Close()

	var items []domain.FitnessData
	for rows.Next() {
		item, err := scanFitness(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fitness data: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *FitnessRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM fitness_data WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete fitness data: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete fitness data: %w", err)
	}
	return n > 0, nil
}
