package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/yusufkecer/hospital-backend/internal/domain"
	"github.com/yusufkecer/hospital-backend/internal/middleware"
	"github.com/yusufkecer/hospital-backend/internal/service"
)

const testSecret = "handler-secret"

type testEnv struct {
	accounts     *fakeAccounts
	resetTokens  *fakeResetTokens
	patients     *fakePatients
	appointments *fakeAppointments
	fitness      *fakeFitness
	messages     *fakeMessages
	queue        *fakeQueue
	activityLog  *fakeActivity
	insights     *fakeInsights
	mailer       *fakeMailer
	push         *fakePublisher

	auth        *AuthHandler
	users       *UserHandler
	patientH    *PatientHandler
	appointment *AppointmentHandler
	fitnessH    *FitnessHandler
	message     *MessageHandler
	queueH      *QueueHandler
	activityH   *ActivityLogHandler
	insightH    *AIInsightHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	e := &testEnv{
		accounts:     newFakeAccounts(),
		patients:     newFakePatients(),
		appointments: newFakeAppointments(),
		fitness:      &fakeFitness{},
		messages:     &fakeMessages{},
		queue:        newFakeQueue(),
		activityLog:  &fakeActivity{},
		insights:     &fakeInsights{},
		mailer:       newFakeMailer(),
		push:         &fakePublisher{},
	}
	e.resetTokens = &fakeResetTokens{created: make(chan string, 4)}

	activity := NewActivity(e.activityLog)
	e.auth = NewAuthHandler(testSecret, e.accounts, e.patients, e.resetTokens, e.mailer, activity)
	e.users = NewUserHandler(e.accounts, stubDashboards{}, activity)
	e.patientH = NewPatientHandler(e.patients, e.insights, activity)
	e.appointment = NewAppointmentHandler(e.appointments, e.patients, e.accounts, e.mailer, activity)
	e.fitnessH = NewFitnessHandler(e.fitness, e.patients, activity)
	e.message = NewMessageHandler(e.messages, e.accounts, e.push, activity)
	e.queueH = NewQueueHandler(e.queue, e.patients, 10, activity)
	e.queueH.now = func() time.Time { return time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC) }
	e.activityH = NewActivityLogHandler(e.activityLog)
	e.insightH = NewAIInsightHandler(e.insights, e.patients, activity)
	return e
}

type stubDashboards struct{}

func (stubDashboards) Build(ctx context.Context, accountID int64, role domain.Role) (*domain.Dashboard, error) {
	if !role.Valid() {
		return nil, service.ErrUnknownRole
	}
	return &domain.Dashboard{Role: role}, nil
}

// seedAccount stores an account directly and returns the principal for it.
func (e *testEnv) seedAccount(t *testing.T, name, email string, role domain.Role) middleware.Principal {
	t.Helper()
	id, err := e.accounts.Create(context.Background(), &domain.Account{Name: name, Email: email, Role: role})
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return middleware.Principal{AccountID: id, Email: email, Role: role}
}

// seedPatient creates a patient-role account with a linked record.
func (e *testEnv) seedPatient(t *testing.T, email string) (middleware.Principal, *domain.Patient) {
	t.Helper()
	p := e.seedAccount(t, "Pat Ient", email, domain.RolePatient)
	mail := email
	patient := &domain.Patient{AccountID: &p.AccountID, FirstName: "Pat", LastName: "Ient", Email: &mail}
	id, err := e.patients.Create(context.Background(), patient)
	if err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	patient.ID = id
	return p, patient
}

func newRequest(t *testing.T, method, target string, body interface{}, p *middleware.Principal, vars map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if p != nil {
		req = req.WithContext(middleware.WithPrincipal(req.Context(), *p))
	}
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (status %d)", err, rec.Code)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["message"]
}

func idVars(n int64) map[string]string {
	return map[string]string{"id": strconv.FormatInt(n, 10)}
}
