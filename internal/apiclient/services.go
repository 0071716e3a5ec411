package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/yusufkecer/hospital-backend/internal/bmi"
	"github.com/yusufkecer/hospital-backend/internal/domain"
)

// Message is the body of endpoints that only acknowledge a request.
type Message struct {
	Message string `json:"message"`
}

// Empty is the payload of 204 responses.
type Empty struct{}

type AuthService struct{ c *Client }

func NewAuthService(c *Client) *AuthService { return &AuthService{c: c} }

// Login stores the returned token on the client's session.
func (s *AuthService) Login(ctx context.Context, email, password string) Envelope[domain.TokenResponse] {
	env := Do[domain.TokenResponse](ctx, s.c, "/api/users/login", RequestOptions{
		Method: http.MethodPost,
		Body:   domain.TokenRequest{Email: email, Password: password},
	})
	return s.remember(env)
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) Envelope[domain.TokenResponse] {
	env := Do[domain.TokenResponse](ctx, s.c, "/api/users/register", RequestOptions{
		Method: http.MethodPost,
		Body:   domain.CreateAccountRequest{Name: name, Email: email, Password: password},
	})
	return s.remember(env)
}

func (s *AuthService) remember(env Envelope[domain.TokenResponse]) Envelope[domain.TokenResponse] {
	if env.OK() {
		if err := s.c.session.SetToken(env.Data.Token); err != nil {
			return failure[domain.TokenResponse](err.Error())
		}
	}
	return env
}

func (s *AuthService) Logout() error {
	return s.c.session.Clear()
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string) Envelope[Message] {
	return Do[Message](ctx, s.c, "/api/users/forgot-password", RequestOptions{
		Method: http.MethodPost,
		Body:   domain.ForgotPasswordRequest{Email: email},
	})
}

func (s *AuthService) ResetPassword(ctx context.Context, email, code, password string) Envelope[Message] {
	return Do[Message](ctx, s.c, "/api/users/reset-password", RequestOptions{
		Method: http.MethodPost,
		Body:   domain.ResetPasswordRequest{Email: email, Token: code, Password: password},
	})
}

func (s *AuthService) Me(ctx context.Context) Envelope[domain.Account] {
	return Do[domain.Account](ctx, s.c, "/api/users/me", RequestOptions{})
}

func (s *AuthService) Dashboard(ctx context.Context) Envelope[domain.Dashboard] {
	return Do[domain.Dashboard](ctx, s.c, "/api/users/me/dashboard", RequestOptions{})
}

func (s *AuthService) ListUsers(ctx context.Context, role domain.Role) Envelope[[]domain.Account] {
	opts := RequestOptions{}
	if role != "" {
		opts.Params = url.Values{"role": {string(role)}}
	}
	return Do[[]domain.Account](ctx, s.c, "/api/users", opts)
}

func (s *AuthService) CreateUser(ctx context.Context, req domain.CreateAccountRequest) Envelope[domain.Account] {
	return Do[domain.Account](ctx, s.c, "/api/users", RequestOptions{Method: http.MethodPost, Body: req})
}

func (s *AuthService) GetUser(ctx context.Context, id int64) Envelope[domain.Account] {
	return Do[domain.Account](ctx, s.c, idPath("/api/users", id), RequestOptions{})
}

func (s *AuthService) DeleteUser(ctx context.Context, id int64) Envelope[Empty] {
	return Do[Empty](ctx, s.c, idPath("/api/users", id), RequestOptions{Method: http.MethodDelete})
}

type PatientService struct{ c *Client }

func NewPatientService(c *Client) *PatientService { return &PatientService{c: c} }

func (s *PatientService) List(ctx context.Context, f domain.PatientFilter) Envelope[[]domain.Patient] {
	return Do[[]domain.Patient](ctx, s.c, "/api/patients", RequestOptions{Query: f})
}

func (s *PatientService) Me(ctx context.Context) Envelope[domain.Patient] {
	return Do[domain.Patient](ctx, s.c, "/api/patients/me", RequestOptions{})
}

func (s *PatientService) Get(ctx context.Context, id int64) Envelope[domain.Patient] {
	return Do[domain.Patient](ctx, s.c, idPath("/api/patients", id), RequestOptions{})
}

func (s *PatientService) Create(ctx context.Context, p *domain.Patient) Envelope[domain.Patient] {
	return Do[domain.Patient](ctx, s.c, "/api/patients", RequestOptions{Method: http.MethodPost, Body: p})
}

func (s *PatientService) Update(ctx context.Context, id int64, fields map[string]interface{}) Envelope[domain.Patient] {
	return Do[domain.Patient](ctx, s.c, idPath("/api/patients", id), RequestOptions{Method: http.MethodPut, Body: fields})
}

func (s *PatientService) Delete(ctx context.Context, id int64) Envelope[Empty] {
	return Do[Empty](ctx, s.c, idPath("/api/patients", id), RequestOptions{Method: http.MethodDelete})
}

// RecordBMI stores a measurement on the patient record.
func (s *PatientService) RecordBMI(ctx context.Context, id int64, heightCm, weightKg float64) Envelope[domain.BMIRecord] {
	return Do[domain.BMIRecord](ctx, s.c, idPath("/api/patients", id)+"/bmi", RequestOptions{
		Method: http.MethodPost,
		Body:   domain.BMIRequest{Height: &heightCm, Weight: &weightKg},
	})
}

// CalculateBMI uses the stateless calculator endpoint.
func (s *PatientService) CalculateBMI(ctx context.Context, heightCm, weightKg float64) Envelope[bmi.Result] {
	return Do[bmi.Result](ctx, s.c, "/api/bmi", RequestOptions{
		Method: http.MethodPost,
		Body:   domain.BMIRequest{Height: &heightCm, Weight: &weightKg},
	})
}

type AppointmentService struct{ c *Client }

func NewAppointmentService(c *Client) *AppointmentService { return &AppointmentService{c: c} }

func (s *AppointmentService) List(ctx context.Context, f domain.AppointmentFilter) Envelope[[]domain.Appointment] {
	return Do[[]domain.Appointment](ctx, s.c, "/api/appointments", RequestOptions{Query: f})
}

func (s *AppointmentService) Get(ctx context.Context, id int64) Envelope[domain.Appointment] {
	return Do[domain.Appointment](ctx, s.c, idPath("/api/appointments", id), RequestOptions{})
}

func (s *AppointmentService) Create(ctx context.Context, a *domain.Appointment) Envelope[domain.Appointment] {
	return Do[domain.Appointment](ctx, s.c, "/api/appointments", RequestOptions{Method: http.MethodPost, Body: a})
}

func (s *AppointmentService) Update(ctx context.Context, id int64, fields map[string]interface{}) Envelope[domain.Appointment] {
	return Do[domain.Appointment](ctx, s.c, idPath("/api/appointments", id), RequestOptions{Method: http.MethodPut, Body: fields})
}

func (s *AppointmentService) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) Envelope[domain.Appointment] {
	return Do[domain.Appointment](ctx, s.c, idPath("/api/appointments", id)+"/status", RequestOptions{
		Method: http.MethodPatch,
		Body:   domain.StatusUpdate{Status: string(status)},
	})
}

func (s *AppointmentService) Delete(ctx context.Context, id int64) Envelope[Empty] {
	return Do[Empty](ctx, s.c, idPath("/api/appointments", id), RequestOptions{Method: http.MethodDelete})
}

type FitnessDataService struct{ c *Client }

func NewFitnessDataService(c *Client) *FitnessDataService { return &FitnessDataService{c: c} }

func (s *FitnessDataService) List(ctx context.Context, f domain.FitnessFilter) Envelope[[]domain.FitnessData] {
	return Do[[]domain.FitnessData](ctx, s.c, "/api/fitness-data", RequestOptions{Query: f})
}

func (s *FitnessDataService) Get(ctx context.Context, id int64) Envelope[domain.FitnessData] {
	return Do[domain.FitnessData](ctx, s.c, idPath("/api/fitness-data", id), RequestOptions{})
}

func (s *FitnessDataService) Create(ctx context.Context, d *domain.FitnessData) Envelope[domain.FitnessData] {
	return Do[domain.FitnessData](ctx, s.c, "/api/fitness-data", RequestOptions{Method: http.MethodPost, Body: d})
}

func (s *FitnessDataService) Delete(ctx context.Context, id int64) Envelope[Empty] {
	return Do[Empty](ctx, s.c, idPath("/api/fitness-data", id), RequestOptions{Method: http.MethodDelete})
}

type MessageService struct{ c *Client }

func NewMessageService(c *Client) *MessageService { return &MessageService{c: c} }

func (s *MessageService) Inbox(ctx context.Context, limit int) Envelope[[]domain.Message] {
	return Do[[]domain.Message](ctx, s.c, "/api/messages", RequestOptions{Params: limitParams(limit)})
}

func (s *MessageService) Conversation(ctx context.Context, with int64, limit int) Envelope[[]domain.Message] {
	params := limitParams(limit)
	params.Set("with", strconv.FormatInt(with, 10))
	return Do[[]domain.Message](ctx, s.c, "/api/messages", RequestOptions{Params: params})
}

func (s *MessageService) Send(ctx context.Context, recipientID int64, content string) Envelope[domain.Message] {
	return Do[domain.Message](ctx, s.c, "/api/messages", RequestOptions{
		Method: http.MethodPost,
		Body:   domain.Message{RecipientID: recipientID, Content: content},
	})
}

func (s *MessageService) MarkRead(ctx context.Context, id int64) Envelope[domain.Message] {
	return Do[domain.Message](ctx, s.c, idPath("/api/messages", id)+"/read", RequestOptions{Method: http.MethodPatch})
}

func limitParams(limit int) url.Values {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	return params
}

type QueueService struct{ c *Client }

func NewQueueService(c *Client) *QueueService { return &QueueService{c: c} }

func (s *QueueService) List(ctx context.Context, f domain.QueueFilter) Envelope[[]domain.QueueEntry] {
	return Do[[]domain.QueueEntry](ctx, s.c, "/api/queue", RequestOptions{Query: f})
}

func (s *QueueService) Get(ctx context.Context, id int64) Envelope[domain.QueueEntry] {
	return Do[domain.QueueEntry](ctx, s.c, idPath("/api/queue", id), RequestOptions{})
}

// Join queues a patient in a department. The server assigns the number.
func (s *QueueService) Join(ctx context.Context, patientID int64, department string) Envelope[domain.QueueEntry] {
	return Do[domain.QueueEntry](ctx, s.c, "/api/queue", RequestOptions{
		Method: http.MethodPost,
		Body:   domain.QueueEntry{PatientID: patientID, Department: department},
	})
}

func (s *QueueService) UpdateStatus(ctx context.Context, id int64, status domain.QueueStatus) Envelope[domain.QueueEntry] {
	return Do[domain.QueueEntry](ctx, s.c, idPath("/api/queue", id)+"/status", RequestOptions{
		Method: http.MethodPatch,
		Body:   domain.StatusUpdate{Status: string(status)},
	})
}

func (s *QueueService) Delete(ctx context.Context, id int64) Envelope[Empty] {
	return Do[Empty](ctx, s.c, idPath("/api/queue", id), RequestOptions{Method: http.MethodDelete})
}

type ActivityLogService struct{ c *Client }

func NewActivityLogService(c *Client) *ActivityLogService { return &ActivityLogService{c: c} }

func (s *ActivityLogService) List(ctx context.Context, f domain.ActivityFilter) Envelope[[]domain.ActivityLog] {
	return Do[[]domain.ActivityLog](ctx, s.c, "/api/activity-logs", RequestOptions{Query: f})
}

func (s *ActivityLogService) Create(ctx context.Context, action, resource string, details map[string]interface{}) Envelope[domain.ActivityLog] {
	return Do[domain.ActivityLog](ctx, s.c, "/api/activity-logs", RequestOptions{
		Method: http.MethodPost,
		Body:   domain.ActivityLog{Action: action, Resource: resource, Details: details},
	})
}

type AIInsightService struct{ c *Client }

func NewAIInsightService(c *Client) *AIInsightService { return &AIInsightService{c: c} }

func (s *AIInsightService) List(ctx context.Context, f domain.InsightFilter) Envelope[[]domain.AIInsight] {
	return Do[[]domain.AIInsight](ctx, s.c, "/api/ai-insights", RequestOptions{Query: f})
}

func (s *AIInsightService) Get(ctx context.Context, id string) Envelope[domain.AIInsight] {
	return Do[domain.AIInsight](ctx, s.c, idPath("/api/ai-insights", id), RequestOptions{})
}

func (s *AIInsightService) Create(ctx context.Context, i *domain.AIInsight) Envelope[domain.AIInsight] {
	return Do[domain.AIInsight](ctx, s.c, "/api/ai-insights", RequestOptions{Method: http.MethodPost, Body: i})
}

func (s *AIInsightService) Delete(ctx context.Context, id string) Envelope[Empty] {
	return Do[Empty](ctx, s.c, idPath("/api/ai-insights", id), RequestOptions{Method: http.MethodDelete})
}
