package handler

import (
	"net/http"

	"github.com/yusufkecer/hospital-backend/internal/domain"
	"github.com/yusufkecer/hospital-backend/internal/middleware"
)

type ActivityLogHandler struct {
	repo ActivityStore
}

func NewActivityLogHandler(repo ActivityStore) *ActivityLogHandler {
	return &ActivityLogHandler{repo: repo}
}

func (h *ActivityLogHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	var f domain.ActivityFilter
	if err := decodeQuery(r, &f); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query parameters")
		return
	}
	f.Normalize()

	logs, err := h.repo.List(r.Context(), f)
	if err != nil {
		writeFailure(w, r, err, "failed to list activity logs")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(logs))
}

// Create stores a client-reported event. The entry is always attributed to
// the caller regardless of the submitted account_id.
func (h *ActivityLogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var entry domain.ActivityLog
	if err := decodeBody(r, &entry); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, _ := middleware.PrincipalFromContext(r.Context())
	entry.ID = ""
	entry.AccountID = p.AccountID
	entry.CreatedAt = timeNow().UTC()
	if err := entry.Validate(); err != nil {
		writeFailure(w, r, err, "failed to create activity log")
		return
	}

	if err := h.repo.Create(r.Context(), &entry); err != nil {
		writeFailure(w, r, err, "failed to create activity log")
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}
