package domain

import "time"

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email    string `json:"email"`
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (r *ResetPasswordRequest) Validate() error {
	if r.Email == "" || r.Token == "" || r.Password == "" {
		return invalid("email, token and password are required", "email", "token", "password")
	}
	if len(r.Password) < 6 {
		return invalid("password must be at least 6 characters", "password")
	}
	return nil
}

// PasswordResetToken is a stored reset code. The code itself is never kept.
type PasswordResetToken struct {
	ID        int64
	AccountID int64
	ExpiresAt time.Time
	Used      bool
}
