package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

type migration struct {
	version string
	sql     string
}

var migrations = []migration{
	{
		version: "000_create_accounts",
		sql: `
			CREATE TABLE IF NOT EXISTS accounts (
				id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
				name          VARCHAR(200) NOT NULL,
				email         VARCHAR(255) NOT NULL UNIQUE,
				password_hash VARCHAR(255) NOT NULL,
				role          VARCHAR(20) NOT NULL DEFAULT 'patient',
				department    VARCHAR(100),
				created_at    DATETIME DEFAULT CURRENT_TIMESTAMP,
				updated_at    DATETIME DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
				INDEX idx_accounts_role (role)
			)`,
	},
	{
		version: "001_create_password_reset_tokens",
		sql: `
			CREATE TABLE IF NOT EXISTS password_reset_tokens (
				id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
				account_id BIGINT UNSIGNED NOT NULL,
				code_hash  CHAR(64) NOT NULL,
				expires_at DATETIME NOT NULL,
				used       TINYINT(1) NOT NULL DEFAULT 0,
				INDEX idx_reset_account_code (account_id, code_hash),
				FOREIGN KEY (account_id) REFERENCES accounts(id) ON DELETE CASCADE
			)`,
	},
	{
		version: "002_create_patients",
		sql: `
			CREATE TABLE IF NOT EXISTS patients (
				id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
				account_id    BIGINT UNSIGNED UNIQUE,
				first_name    VARCHAR(100) NOT NULL,
				last_name     VARCHAR(100) NOT NULL,
				gender        VARCHAR(10),
				date_of_birth VARCHAR(10),
				phone         VARCHAR(30),
				email         VARCHAR(255),
				address       VARCHAR(500),
				blood_group   VARCHAR(3),
				height        DOUBLE,
				weight        DOUBLE,
				bmi           DOUBLE,
				bmi_category  VARCHAR(30),
				created_at    DATETIME DEFAULT CURRENT_TIMESTAMP,
				updated_at    DATETIME DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
				FOREIGN KEY (account_id) REFERENCES accounts(id) ON DELETE SET NULL
			)`,
	},
	{
		version: "003_create_appointments",
		sql: `
			CREATE TABLE IF NOT EXISTS appointments (
				id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
				patient_id   BIGINT UNSIGNED NOT NULL,
				doctor_id    BIGINT UNSIGNED NOT NULL,
				department   VARCHAR(100) NOT NULL,
				scheduled_at DATETIME NOT NULL,
				reason       VARCHAR(500),
				notes        TEXT,
				status       VARCHAR(20) NOT NULL DEFAULT 'scheduled',
				created_at   DATETIME DEFAULT CURRENT_TIMESTAMP,
				updated_at   DATETIME DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
				INDEX idx_appointments_doctor_time (doctor_id, scheduled_at),
				INDEX idx_appointments_patient_time (patient_id, scheduled_at),
				FOREIGN KEY (patient_id) REFERENCES patients(id) ON DELETE CASCADE,
				FOREIGN KEY (doctor_id) REFERENCES accounts(id) ON DELETE CASCADE
			)`,
	},
	{
		version: "004_create_fitness_data",
		sql: `
			CREATE TABLE IF NOT EXISTS fitness_data (
				id              BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
				patient_id      BIGINT UNSIGNED NOT NULL,
				recorded_on     VARCHAR(10) NOT NULL,
				steps           INT,
				heart_rate      INT,
				calories_burned DOUBLE,
				sleep_hours     DOUBLE,
				weight          DOUBLE,
				notes           VARCHAR(500),
				created_at      DATETIME DEFAULT CURRENT_TIMESTAMP,
				INDEX idx_fitness_patient_day (patient_id, recorded_on),
				FOREIGN KEY (patient_id) REFERENCES patients(id) ON DELETE CASCADE
			)`,
	},
	{
		version: "005_create_messages",
		sql: `
			CREATE TABLE IF NOT EXISTS messages (
				id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
				sender_id    BIGINT UNSIGNED NOT NULL,
				recipient_id BIGINT UNSIGNED NOT NULL,
				content      TEXT NOT NULL,
				is_read      TINYINT(1) NOT NULL DEFAULT 0,
				created_at   DATETIME DEFAULT CURRENT_TIMESTAMP,
				INDEX idx_messages_pair (sender_id, recipient_id, created_at),
				INDEX idx_messages_unread (recipient_id, is_read),
				FOREIGN KEY (sender_id) REFERENCES accounts(id) ON DELETE CASCADE,
				FOREIGN KEY (recipient_id) REFERENCES accounts(id) ON DELETE CASCADE
			)`,
	},
	{
		version: "006_create_queue_entries",
		sql: `
			CREATE TABLE IF NOT EXISTS queue_entries (
				id             BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
				patient_id     BIGINT UNSIGNED NOT NULL,
				appointment_id BIGINT UNSIGNED,
				department     VARCHAR(100) NOT NULL,
				queue_date     DATE NOT NULL,
				queue_number   INT NOT NULL,
				status         VARCHAR(20) NOT NULL DEFAULT 'waiting',
				created_at     DATETIME DEFAULT CURRENT_TIMESTAMP,
				UNIQUE KEY uq_queue_department_day (department, queue_date, queue_number),
				FOREIGN KEY (patient_id) REFERENCES patients(id) ON DELETE CASCADE,
				FOREIGN KEY (appointment_id) REFERENCES appointments(id) ON DELETE SET NULL
			)`,
	},
}

func RunMigrations(ctx context.Context, db *sql.DB, logger zerolog.Logger) error {
	if err := ensureMigrationsTable(ctx, db); err != nil {
		return err
	}

	for _, m := range migrations {
		applied, err := isMigrationApplied(ctx, db, m.version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		if err := executeMigration(ctx, db, m); err != nil {
			return err
		}

		logger.Info().Str("version", m.version).Msg("applied migration")
	}

	return nil
}

// PendingMigrations lists the versions not yet recorded in schema_migrations.
func PendingMigrations(ctx context.Context, db *sql.DB) ([]string, error) {
	if err := ensureMigrationsTable(ctx, db); err != nil {
		return nil, err
	}

	var pending []string
	for _, m := range migrations {
		applied, err := isMigrationApplied(ctx, db, m.version)
		if err != nil {
			return nil, err
		}
		if !applied {
			pending = append(pending, m.version)
		}
	}
	return pending, nil
}

func ensureMigrationsTable(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    VARCHAR(255) PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	return nil
}

func isMigrationApplied(ctx context.Context, db *sql.DB, version string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM schema_migrations WHERE version = ?",
		version,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check migration %s: %w", version, err)
	}
	return count > 0, nil
}

func executeMigration(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for %s: %w", m.version, err)
	}

	for _, stmt := range strings.Split(m.sql, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to execute migration %s: %w", m.version, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version) VALUES (?)",
		m.version,
	); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record migration %s: %w", m.version, err)
	}

	return tx.Commit()
}
