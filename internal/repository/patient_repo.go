package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/yusufkecer/hospital-backend/internal/domain"
)

type PatientRepository struct {
	db *sql.DB
}

func NewPatientRepository(db *sql.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

const patientColumns = `id, account_id, first_name, last_name, gender, date_of_birth, phone, email,
	address, blood_group, height, weight, bmi, bmi_category, created_at, updated_at`

func scanPatient(row interface{ Scan(...any) error }) (*domain.Patient, error) {
	var p domain.Patient
	err := row.Scan(&p.ID, &p.AccountID, &p.FirstName, &p.LastName, &p.Gender, &p.DateOfBirth, &p.Phone, &p.Email,
		&p.Address, &p.BloodGroup, &p.Height, &p.Weight, &p.BMI, &p.BMICategory, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PatientRepository) Create(ctx context.Context, p *domain.Patient) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO patients (account_id, first_name, last_name, gender, date_of_birth, phone, email,
			address, blood_group, height, weight, bmi, bmi_category)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.AccountID, p.FirstName, p.LastName, p.Gender, p.DateOfBirth, p.Phone, p.Email,
		p.Address, p.BloodGroup, p.Height, p.Weight, p.BMI, p.BMICategory,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create patient: %w", err)
	}
	return result.LastInsertId()
}

func (r *PatientRepository) GetByID(ctx context.Context, id int64) (*domain.Patient, error) {
	p, err := scanPatient(r.db.QueryRowContext(ctx,
		`SELECT `+patientColumns+` FROM patients WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return p, nil
}

func (r *PatientRepository) GetByAccountID(ctx context.Context, accountID int64) (*domain.Patient, error) {
	p, err := scanPatient(r.db.QueryRowContext(ctx,
		`SELECT `+patientColumns+` FROM patients WHERE account_id = ?`, accountID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return p, nil
}

func (r *PatientRepository) List(ctx context.Context, f domain.PatientFilter) ([]domain.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients`
	var args []interface{}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		query += ` WHERE first_name LIKE ? OR last_name LIKE ? OR email LIKE ? OR phone LIKE ?`
		args = append(args, like, like, like, like)
	}
	query += ` ORDER BY id ASC LIMIT ? OFFSET ?`
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	defer rows.Close()

	var patients []domain.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}
		patients = append(patients, *p)
	}
	return patients, rows.Err()
}

func (r *PatientRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM patients`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count patients: %w", err)
	}
	return n, nil
}

func (r *PatientRepository) Update(ctx context.Context, p *domain.Patient) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE patients SET account_id = ?, first_name = ?, last_name = ?, gender = ?, date_of_birth = ?,
			phone = ?, email = ?, address = ?, blood_group = ?, height = ?, weight = ?, bmi = ?, bmi_category = ?
		 WHERE id = ?`,
		p.AccountID, p.FirstName, p.LastName, p.Gender, p.DateOfBirth,
		p.Phone, p.Email, p.Address, p.BloodGroup, p.Height, p.Weight, p.BMI, p.BMICategory,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return nil
}

// UpdateBMI stores a freshly computed BMI together with the measurements it
// was derived from.
func (r *PatientRepository) UpdateBMI(ctx context.Context, id int64, height, weight, bmi float64, category string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE patients SET height = ?, weight = ?, bmi = ?, bmi_category = ? WHERE id = ?`,
		height, weight, bmi, category, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient bmi: %w", err)
	}
	return nil
}

func (r *PatientRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM patients WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete patient: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete patient: %w", err)
	}
	return n > 0, nil
}
