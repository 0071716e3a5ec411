package handler

import (
	"context"
	"crypto/rand"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"golang.org/x/crypto/bcrypt"

	"github.com/yusufkecer/hospital-backend/internal/domain"
	"github.com/yusufkecer/hospital-backend/internal/middleware"
)

const (
	resetCodeTTL       = 15 * time.Minute
	forgotPasswordWait = 30 * time.Second
)

type AuthHandler struct {
	jwtSecret      string
	repo           AccountStore
	patients       PatientStore
	resetTokenRepo ResetTokenStore
	mailer         Mailer
	activity       *Activity
}

func NewAuthHandler(
	jwtSecret string,
	repo AccountStore,
	patients PatientStore,
	resetTokenRepo ResetTokenStore,
	mailer Mailer,
	activity *Activity,
) *AuthHandler {
	return &AuthHandler{
		jwtSecret:      jwtSecret,
		repo:           repo,
		patients:       patients,
		resetTokenRepo: resetTokenRepo,
		mailer:         mailer,
		activity:       activity,
	}
}

// Register signs up a patient account and creates the linked patient record.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateAccountRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Role = domain.RolePatient
	req.Department = nil
	req.Normalize()
	if err := req.Validate(); err != nil {
		writeFailure(w, r, err, "failed to create account")
		return
	}

	account, err := createAccount(r.Context(), h.repo, &req)
	if isDuplicate(err) {
		writeError(w, http.StatusConflict, "email already exists")
		return
	}
	if err != nil {
		writeFailure(w, r, err, "failed to create account")
		return
	}

	first, last := splitName(account.Name)
	patient := &domain.Patient{
		AccountID: &account.ID,
		FirstName: first,
		LastName:  last,
		Email:     &account.Email,
	}
	if patient.ID, err = h.patients.Create(r.Context(), patient); err != nil {
		log := hlog.FromRequest(r)
		log.Error().Err(err).Int64("account_id", account.ID).Msg("failed to create patient record")
		if _, derr := h.repo.Delete(r.Context(), account.ID); derr != nil {
			log.Error().Err(derr).Int64("account_id", account.ID).Msg("failed to roll back account")
		}
		writeFailure(w, r, err, "failed to create account")
		return
	}

	token, err := middleware.GenerateToken(account, h.jwtSecret)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	r = r.WithContext(middleware.WithPrincipal(r.Context(), middleware.Principal{
		AccountID: account.ID, Email: account.Email, Role: account.Role,
	}))
	h.activity.Record(r, "register", "users", account.ID, nil)

	writeJSON(w, http.StatusCreated, domain.TokenResponse{Token: token, Account: account})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.TokenRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}
	if !domain.ValidEmail(email) {
		writeError(w, http.StatusBadRequest, "invalid email format")
		return
	}

	account, err := h.repo.GetByEmail(r.Context(), email)
	if err != nil {
		writeFailure(w, r, err, "failed to login")
		return
	}
	if account == nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	err = bcrypt.CompareHashAndPassword(
		[]byte(account.PasswordHash),
		[]byte(req.Password),
	)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := middleware.GenerateToken(account, h.jwtSecret)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, domain.TokenResponse{Token: token, Account: account})
}

// ForgotPassword always answers 200 so callers cannot probe which e-mails
// are registered. The code is generated and mailed in the background.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	const reply = "if the email exists, a code has been sent"

	var req domain.ForgotPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"message": reply})
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	logger := hlog.FromRequest(r).With().Str("email", email).Logger()
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), forgotPasswordWait)

	go func() {
		defer cancel()
		h.sendResetCode(ctx, logger, email)
	}()

	writeJSON(w, http.StatusOK, map[string]string{"message": reply})
}

func (h *AuthHandler) sendResetCode(ctx context.Context, logger zerolog.Logger, email string) {
	account, err := h.repo.GetByEmail(ctx, email)
	if err != nil {
		logger.Error().Err(err).Msg("forgot-password lookup failed")
		return
	}
	if account == nil {
		return
	}

	if err := h.resetTokenRepo.RevokeAll(ctx, account.ID); err != nil {
		logger.Warn().Err(err).Int64("account_id", account.ID).Msg("failed to revoke old reset codes")
	}

	code, err := generateOTP()
	if err != nil {
		logger.Error().Err(err).Msg("failed to generate reset code")
		return
	}

	if err := h.resetTokenRepo.Create(ctx, account.ID, code, time.Now().Add(resetCodeTTL)); err != nil {
		logger.Error().Err(err).Int64("account_id", account.ID).Msg("failed to save reset code")
		return
	}

	if err := h.mailer.SendPasswordReset(ctx, email, code); err != nil {
		logger.Error().Err(err).Msg("failed to send reset email")
		return
	}
	logger.Info().Msg("reset email sent")
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ResetPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := req.Validate(); err != nil {
		writeFailure(w, r, err, "failed to reset password")
		return
	}

	account, err := h.repo.GetByEmail(r.Context(), req.Email)
	if err != nil {
		writeFailure(w, r, err, "failed to verify token")
		return
	}
	if account == nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	resetToken, err := h.resetTokenRepo.FindValid(r.Context(), account.ID, req.Token, time.Now())
	if err != nil {
		writeFailure(w, r, err, "failed to verify token")
		return
	}
	if resetToken == nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	consumed, err := h.resetTokenRepo.Consume(r.Context(), resetToken.ID)
	if err != nil {
		writeFailure(w, r, err, "failed to verify token")
		return
	}
	if !consumed {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	if err := h.repo.UpdatePassword(r.Context(), account.ID, string(passwordHash)); err != nil {
		writeFailure(w, r, err, "failed to update password")
		return
	}
	if err := h.resetTokenRepo.RevokeAll(r.Context(), account.ID); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Int64("account_id", account.ID).Msg("failed to revoke reset codes")
	}

	h.activity.Record(r, "reset-password", "users", account.ID, nil)
	writeJSON(w, http.StatusOK, map[string]string{"message": "password reset successful"})
}

func createAccount(ctx context.Context, repo AccountStore, req *domain.CreateAccountRequest) (*domain.Account, error) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &domain.Account{
		Name:         req.Name,
		Email:        req.Email,
		Role:         req.Role,
		Department:   req.Department,
		PasswordHash: string(passwordHash),
		CreatedAt:    time.Now().UTC(),
	}
	if account.ID, err = repo.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func splitName(name string) (string, string) {
	first, last, _ := strings.Cut(strings.TrimSpace(name), " ")
	last = strings.TrimSpace(last)
	if last == "" {
		last = "-"
	}
	return first, last
}

func generateOTP() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	n := int(b[0])<<16 | int(b[1])<<8 | int(b[2])
	return fmt.Sprintf("%06d", n%1000000), nil
}
