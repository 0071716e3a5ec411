package domain

import (
	"strings"
	"time"
)

type Account struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	Department   *string   `json:"department,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type CreateAccountRequest struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Role       Role    `json:"role"`
	Department *string `json:"department,omitempty"`
}

// Normalize lowercases the e-mail and trims the name.
func (r *CreateAccountRequest) Normalize() {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	r.Name = strings.TrimSpace(r.Name)
}

func (r *CreateAccountRequest) Validate() error {
	if blank(r.Name) {
		return invalid("name is required", "name")
	}
	if err := validateCredentials(r.Email, r.Password); err != nil {
		return err
	}
	if !r.Role.Valid() {
		return invalid("role must be one of admin, doctor, reception, patient", "role")
	}
	return nil
}

func validateCredentials(email, password string) error {
	if email == "" || password == "" {
		return invalid("email and password are required", "email", "password")
	}
	if !ValidEmail(email) {
		return invalid("invalid email format", "email")
	}
	if len(password) < 6 {
		return invalid("password must be at least 6 characters", "password")
	}
	return nil
}

// ValidEmail performs the same shallow check as the signup form: a local
// part, an @ and a dot somewhere in the domain.
func ValidEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 {
		return false
	}
	return strings.Contains(email[at:], ".")
}
