package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/yusufkecer/hospital-backend/internal/domain"
	"github.com/yusufkecer/hospital-backend/internal/middleware"
	"github.com/yusufkecer/hospital-backend/internal/service"
)

type DashboardBuilder interface {
	Build(ctx context.Context, accountID int64, role domain.Role) (*domain.Dashboard, error)
}

// UserHandler serves the account side of /api/users.
type UserHandler struct {
	repo       AccountStore
	dashboards DashboardBuilder
	activity   *Activity
}

func NewUserHandler(repo AccountStore, dashboards DashboardBuilder, activity *Activity) *UserHandler {
	return &UserHandler{repo: repo, dashboards: dashboards, activity: activity}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFromContext(r.Context())

	account, err := h.repo.GetByID(r.Context(), p.AccountID)
	if err != nil {
		writeFailure(w, r, err, "failed to get user")
		return
	}
	if account == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *UserHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFromContext(r.Context())

	d, err := h.dashboards.Build(r.Context(), p.AccountID, p.Role)
	if errors.Is(err, service.ErrUnknownRole) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	if err != nil {
		writeFailure(w, r, err, "failed to build dashboard")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Create lets an administrator add staff or patient accounts with any role.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateAccountRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		writeFailure(w, r, err, "failed to create user")
		return
	}

	account, err := createAccount(r.Context(), h.repo, &req)
	if isDuplicate(err) {
		writeError(w, http.StatusConflict, "email already exists")
		return
	}
	if err != nil {
		writeFailure(w, r, err, "failed to create user")
		return
	}

	h.activity.Record(r, "create", "users", account.ID, map[string]interface{}{"role": account.Role})
	writeJSON(w, http.StatusCreated, account)
}

func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	var role domain.Role
	if raw := r.URL.Query().Get("role"); raw != "" {
		parsed, err := domain.ParseRole(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		role = parsed
	}

	accounts, err := h.repo.List(r.Context(), role)
	if err != nil {
		writeFailure(w, r, err, "failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(accounts))
}

func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	account, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err, "failed to get user")
		return
	}
	if account == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if p, _ := middleware.PrincipalFromContext(r.Context()); p.AccountID == id {
		writeError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}

	deleted, err := h.repo.Delete(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err, "failed to delete user")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	h.activity.Record(r, "delete", "users", id, nil)
	w.WriteHeader(http.StatusNoContent)
}
