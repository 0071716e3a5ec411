package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/yusufkecer/hospital-backend/internal/domain"
)

// ResetTokenRepository keeps one-time password reset codes. Only the SHA-256
// of a code is stored; the plain code exists only in the e-mail.
type ResetTokenRepository struct {
	db *sql.DB
}

func NewResetTokenRepository(db *sql.DB) *ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

func hashResetCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

func (r *ResetTokenRepository) Create(ctx context.Context, accountID int64, code string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO password_reset_tokens (account_id, code_hash, expires_at) VALUES (?, ?, ?)`,
		accountID, hashResetCode(code), expiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create reset code: %w", err)
	}
	return nil
}

// FindValid returns the newest unused, unexpired code for the account that
// matches code, or (nil, nil).
func (r *ResetTokenRepository) FindValid(ctx context.Context, accountID int64, code string, now time.Time) (*domain.PasswordResetToken, error) {
	var t domain.PasswordResetToken
	err := r.db.QueryRowContext(ctx, `
		SELECT id, account_id, expires_at, used
		FROM password_reset_tokens
		WHERE account_id = ? AND code_hash = ? AND used = 0 AND expires_at > ?
		ORDER BY id DESC
		LIMIT 1`,
		accountID, hashResetCode(code), now.UTC(),
	).Scan(&t.ID, &t.AccountID, &t.ExpiresAt, &t.Used)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find reset code: %w", err)
	}
	return &t, nil
}

// Consume marks a code used. It reports false when another request already
// consumed it, so a code can change a password at most once.
func (r *ResetTokenRepository) Consume(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE password_reset_tokens SET used = 1 WHERE id = ? AND used = 0`, id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to consume reset code: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to consume reset code: %w", err)
	}
	return n == 1, nil
}

// RevokeAll invalidates every outstanding code of an account.
func (r *ResetTokenRepository) RevokeAll(ctx context.Context, accountID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE password_reset_tokens SET used = 1 WHERE account_id = ? AND used = 0`, accountID,
	)
	if err != nil {
		return fmt.Errorf("failed to revoke reset codes: %w", err)
	}
	return nil
}
