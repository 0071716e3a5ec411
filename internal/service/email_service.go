package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/yusufkecer/hospital-backend/internal/domain"
)

const resendEndpoint = "https://api.resend.com/emails"

// EmailService sends transactional mail through the Resend HTTP API. With no
// API key configured every send is logged and skipped.
type EmailService struct {
	apiKey   string
	from     string
	endpoint string
	client   *http.Client
	logger   zerolog.Logger
}

func NewEmailService(apiKey, from string, logger zerolog.Logger) *EmailService {
	return &EmailService{
		apiKey:   apiKey,
		from:     from,
		endpoint: resendEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger.With().Str("component", "email").Logger(),
	}
}

func (s *EmailService) Enabled() bool {
	return s.apiKey != ""
}

func (s *EmailService) SendPasswordReset(ctx context.Context, to, code string) error {
	return s.send(ctx, to, "Hospital - Password Reset Code", buildResetEmail(code))
}

func (s *EmailService) SendAppointmentConfirmation(ctx context.Context, to, patientName string, a *domain.Appointment) error {
	return s.send(ctx, to, "Hospital - Appointment Confirmation", buildAppointmentEmail(patientName, a))
}

func (s *EmailService) send(ctx context.Context, to, subject, body string) error {
	if !s.Enabled() {
		s.logger.Debug().Str("to", to).Str("subject", subject).Msg("mail disabled, skipping")
		return nil
	}

	payload := map[string]interface{}{
		"from":    s.from,
		"to":      []string{to},
		"subject": subject,
		"html":    body,
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("resend http error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("resend api error %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

func buildResetEmail(code string) string {
	return `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family:Arial,sans-serif;background:#f4f4f4;padding:20px;">
  <div style="max-width:480px;margin:0 auto;background:#fff;border-radius:8px;padding:32px;">
    <h2 style="color:#333;">Password Reset</h2>
    <p>Hello,</p>
    <p>Use the 6 digit code below to reset your password:</p>
    <div style="text-align:center;margin:24px 0;">
      <span style="font-size:36px;font-weight:bold;letter-spacing:8px;color:#0b7a75;">` + html.EscapeString(code) + `</span>
    </div>
    <p>The code is valid for <strong>15 minutes</strong>.</p>
    <p>If you did not request this, you can ignore this e-mail.</p>
  </div>
</body>
</html>`
}

func buildAppointmentEmail(patientName string, a *domain.Appointment) string {
	when := a.ScheduledAt.UTC().Format("Monday, 02 January 2006 15:04 MST")
	return `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family:Arial,sans-serif;background:#f4f4f4;padding:20px;">
  <div style="max-width:480px;margin:0 auto;background:#fff;border-radius:8px;padding:32px;">
    <h2 style="color:#333;">Appointment Confirmation</h2>
    <p>Hello ` + html.EscapeString(patientName) + `,</p>
    <p>Your appointment in <strong>` + html.EscapeString(a.Department) + `</strong> is booked for:</p>
    <p style="font-size:18px;font-weight:bold;">` + when + `</p>
    <p>Please arrive 10 minutes early and bring any previous reports.</p>
  </div>
</body>
</html>`
}
