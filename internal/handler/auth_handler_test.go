package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/yusufkecer/hospital-backend/internal/domain"
	"github.com/yusufkecer/hospital-backend/internal/middleware"
)

func TestRegister_CreatesPatientAccount(t *testing.T) {
	e := newTestEnv(t)

	rec := serve(e.auth.Register, newRequest(t, http.MethodPost, "/api/users/register", map[string]string{
		"name": "Ada Lovelace", "email": " Ada@Example.com ", "password": "secret1", "role": "admin",
	}, nil, nil))
	expectStatus(t, rec, http.StatusCreated)

	resp := decode[domain.TokenResponse](t, rec)
	if resp.Token == "" || resp.Account == nil {
		t.Fatalf("expected token and user, got %+v", resp)
	}
	if resp.Account.Role != domain.RolePatient {
		t.Errorf("self-registration must create a patient, got %s", resp.Account.Role)
	}
	if resp.Account.Email != "ada@example.com" {
		t.Errorf("expected normalized email, got %s", resp.Account.Email)
	}

	p, err := middleware.ParseToken(resp.Token, testSecret)
	if err != nil || p.AccountID != resp.Account.ID {
		t.Fatalf("token does not identify the new account: %v %+v", err, p)
	}

	patient, _ := e.patients.GetByAccountID(context.Background(), resp.Account.ID)
	if patient == nil || patient.FirstName != "Ada" || patient.LastName != "Lovelace" {
		t.Errorf("expected linked patient record, got %+v", patient)
	}
	if got := e.activityLog.actions(); len(got) != 1 || got[0] != "register users" {
		t.Errorf("unexpected activity %v", got)
	}
}

func TestRegister_Validation(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name   string
		body   interface{}
		status int
		msg    string
	}{
		{"bad json", "{", http.StatusBadRequest, "invalid request body"},
		{"missing name", map[string]string{"email": "a@b.co", "password": "secret1"}, http.StatusBadRequest, "name is required"},
		{"bad email", map[string]string{"name": "A", "email": "nope", "password": "secret1"}, http.StatusBadRequest, "invalid email format"},
		{"short password", map[string]string{"name": "A", "email": "a@b.co", "password": "123"}, http.StatusBadRequest, "at least 6"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e.auth.Register, newRequest(t, http.MethodPost, "/api/users/register", tt.body, nil, nil))
			expectStatus(t, rec, tt.status)
			if msg := errorMessage(t, rec); !strings.Contains(msg, tt.msg) {
				t.Errorf("expected %q in message, got %q", tt.msg, msg)
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	e := newTestEnv(t)
	e.seedAccount(t, "Existing", "dup@example.com", domain.RolePatient)

	rec := serve(e.auth.Register, newRequest(t, http.MethodPost, "/api/users/register", map[string]string{
		"name": "Dup", "email": "dup@example.com", "password": "secret1",
	}, nil, nil))
	expectStatus(t, rec, http.StatusConflict)
	if msg := errorMessage(t, rec); msg != "email already exists" {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestRegister_RollsBackWhenPatientRecordFails(t *testing.T) {
	e := newTestEnv(t)
	e.patients.createErr = errors.New("patients table unavailable")

	rec := serve(e.auth.Register, newRequest(t, http.MethodPost, "/api/users/register", map[string]string{
		"name": "Ada Lovelace", "email": "ada@example.com", "password": "secret1",
	}, nil, nil))
	expectStatus(t, rec, http.StatusInternalServerError)
	if msg := errorMessage(t, rec); msg != "failed to create account" {
		t.Errorf("unexpected message %q", msg)
	}

	if acct, _ := e.accounts.GetByEmail(context.Background(), "ada@example.com"); acct != nil {
		t.Errorf("account %d left behind without a patient record", acct.ID)
	}

	e.patients.createErr = nil
	rec = serve(e.auth.Register, newRequest(t, http.MethodPost, "/api/users/register", map[string]string{
		"name": "Ada Lovelace", "email": "ada@example.com", "password": "secret1",
	}, nil, nil))
	expectStatus(t, rec, http.StatusCreated)
}

func seedWithPassword(t *testing.T, e *testEnv, email, password string, role domain.Role) int64 {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	id, err := e.accounts.Create(context.Background(), &domain.Account{Name: "Doc", Email: email, Role: role, PasswordHash: string(hash)})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return id
}

func TestLogin(t *testing.T) {
	e := newTestEnv(t)
	accountID := seedWithPassword(t, e, "doc@example.com", "secret1", domain.RoleDoctor)

	rec := serve(e.auth.Login, newRequest(t, http.MethodPost, "/api/users/login", map[string]string{
		"email": "DOC@example.com", "password": "secret1",
	}, nil, nil))
	expectStatus(t, rec, http.StatusOK)
	resp := decode[domain.TokenResponse](t, rec)
	p, err := middleware.ParseToken(resp.Token, testSecret)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if p.AccountID != accountID || p.Role != domain.RoleDoctor {
		t.Errorf("unexpected principal %+v", p)
	}

	for _, body := range []map[string]string{
		{"email": "doc@example.com", "password": "wrong12"},
		{"email": "ghost@example.com", "password": "secret1"},
	} {
		rec := serve(e.auth.Login, newRequest(t, http.MethodPost, "/api/users/login", body, nil, nil))
		expectStatus(t, rec, http.StatusUnauthorized)
		if msg := errorMessage(t, rec); msg != "invalid email or password" {
			t.Errorf("unexpected message %q", msg)
		}
	}
}

func TestForgotAndResetPassword(t *testing.T) {
	e := newTestEnv(t)
	seedWithPassword(t, e, "pat@example.com", "oldpass", domain.RolePatient)

	rec := serve(e.auth.ForgotPassword, newRequest(t, http.MethodPost, "/api/users/forgot-password",
		map[string]string{"email": "pat@example.com"}, nil, nil))
	expectStatus(t, rec, http.StatusOK)

	var code string
	select {
	case code = <-e.resetTokens.created:
	case <-time.After(2 * time.Second):
		t.Fatal("reset code was never created")
	}
	select {
	case mail := <-e.mailer.sent:
		if mail.kind != "reset" || mail.to != "pat@example.com" || mail.body != code {
			t.Errorf("unexpected mail %+v", mail)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reset mail was never sent")
	}
	if len(code) != 6 {
		t.Errorf("expected 6 digit code, got %q", code)
	}

	rec = serve(e.auth.ResetPassword, newRequest(t, http.MethodPost, "/api/users/reset-password",
		map[string]string{"email": "pat@example.com", "token": "000000x", "password": "newpass"}, nil, nil))
	expectStatus(t, rec, http.StatusUnauthorized)

	rec = serve(e.auth.ResetPassword, newRequest(t, http.MethodPost, "/api/users/reset-password",
		map[string]string{"email": "pat@example.com", "token": code, "password": "newpass"}, nil, nil))
	expectStatus(t, rec, http.StatusOK)

	rec = serve(e.auth.Login, newRequest(t, http.MethodPost, "/api/users/login",
		map[string]string{"email": "pat@example.com", "password": "newpass"}, nil, nil))
	expectStatus(t, rec, http.StatusOK)

	rec = serve(e.auth.ResetPassword, newRequest(t, http.MethodPost, "/api/users/reset-password",
		map[string]string{"email": "pat@example.com", "token": code, "password": "another"}, nil, nil))
	expectStatus(t, rec, http.StatusUnauthorized)
}

func TestForgotPassword_UnknownEmailStillOK(t *testing.T) {
	e := newTestEnv(t)
	rec := serve(e.auth.ForgotPassword, newRequest(t, http.MethodPost, "/api/users/forgot-password",
		map[string]string{"email": "nobody@example.com"}, nil, nil))
	expectStatus(t, rec, http.StatusOK)

	select {
	case <-e.resetTokens.created:
		t.Fatal("no code should be created for unknown accounts")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUserHandler_AdminOperations(t *testing.T) {
	e := newTestEnv(t)
	admin := e.seedAccount(t, "Admin", "admin@example.com", domain.RoleAdmin)

	rec := serve(e.users.Create, newRequest(t, http.MethodPost, "/api/users", map[string]interface{}{
		"name": "Dr Who", "email": "who@example.com", "password": "tardis", "role": "doctor", "department": "Cardiology",
	}, &admin, nil))
	expectStatus(t, rec, http.StatusCreated)
	doc := decode[domain.Account](t, rec)
	if doc.Role != domain.RoleDoctor || doc.Department == nil || *doc.Department != "Cardiology" {
		t.Errorf("unexpected account %+v", doc)
	}

	rec = serve(e.users.GetAll, newRequest(t, http.MethodGet, "/api/users?role=doctor", nil, &admin, nil))
	expectStatus(t, rec, http.StatusOK)
	if list := decode[[]domain.Account](t, rec); len(list) != 1 || list[0].ID != doc.ID {
		t.Errorf("unexpected doctor list %+v", list)
	}

	rec = serve(e.users.GetAll, newRequest(t, http.MethodGet, "/api/users?role=janitor", nil, &admin, nil))
	expectStatus(t, rec, http.StatusBadRequest)

	rec = serve(e.users.GetByID, newRequest(t, http.MethodGet, "/api/users/x", nil, &admin, idVars(doc.ID)))
	expectStatus(t, rec, http.StatusOK)

	rec = serve(e.users.Delete, newRequest(t, http.MethodDelete, "/api/users/x", nil, &admin, idVars(admin.AccountID)))
	expectStatus(t, rec, http.StatusBadRequest)

	rec = serve(e.users.Delete, newRequest(t, http.MethodDelete, "/api/users/x", nil, &admin, idVars(doc.ID)))
	expectStatus(t, rec, http.StatusNoContent)

	rec = serve(e.users.GetByID, newRequest(t, http.MethodGet, "/api/users/x", nil, &admin, idVars(doc.ID)))
	expectStatus(t, rec, http.StatusNotFound)
}

func TestUserHandler_MeAndDashboard(t *testing.T) {
	e := newTestEnv(t)
	doc := e.seedAccount(t, "Doc", "doc@example.com", domain.RoleDoctor)

	rec := serve(e.users.Me, newRequest(t, http.MethodGet, "/api/users/me", nil, &doc, nil))
	expectStatus(t, rec, http.StatusOK)
	if me := decode[domain.Account](t, rec); me.ID != doc.AccountID {
		t.Errorf("unexpected me %+v", me)
	}

	rec = serve(e.users.Dashboard, newRequest(t, http.MethodGet, "/api/users/me/dashboard", nil, &doc, nil))
	expectStatus(t, rec, http.StatusOK)
	if d := decode[domain.Dashboard](t, rec); d.Role != domain.RoleDoctor {
		t.Errorf("unexpected dashboard role %s", d.Role)
	}

	odd := middleware.Principal{AccountID: doc.AccountID, Role: domain.Role("janitor")}
	rec = serve(e.users.Dashboard, newRequest(t, http.MethodGet, "/api/users/me/dashboard", nil, &odd, nil))
	expectStatus(t, rec, http.StatusForbidden)
}
