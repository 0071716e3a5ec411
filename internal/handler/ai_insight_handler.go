package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/yusufkecer/hospital-backend/internal/domain"
	"github.com/yusufkecer/hospital-backend/internal/middleware"
)

type AIInsightHandler struct {
	repo     InsightStore
	patients PatientStore
	activity *Activity
}

func NewAIInsightHandler(repo InsightStore, patients PatientStore, activity *Activity) *AIInsightHandler {
	return &AIInsightHandler{repo: repo, patients: patients, activity: activity}
}

// allowed reports whether the caller may see insights for patientID,
// answering 403 itself when not.
func (h *AIInsightHandler) allowed(w http.ResponseWriter, r *http.Request, patientID int64) bool {
	p, _ := middleware.PrincipalFromContext(r.Context())
	if p.Role.Staff() {
		return true
	}
	own, err := ownPatientID(r.Context(), h.patients, p)
	if err != nil {
		writeFailure(w, r, err, "failed to resolve patient")
		return false
	}
	if own == 0 || own != patientID {
		writeError(w, http.StatusForbidden, "forbidden")
		return false
	}
	return true
}

func (h *AIInsightHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	var f domain.InsightFilter
	if err := decodeQuery(r, &f); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query parameters")
		return
	}
	f.Normalize()

	p, _ := middleware.PrincipalFromContext(r.Context())
	if p.Role == domain.RolePatient {
		own, err := ownPatientID(r.Context(), h.patients, p)
		if err != nil {
			writeFailure(w, r, err, "failed to list insights")
			return
		}
		if own == 0 {
			writeJSON(w, http.StatusOK, []domain.AIInsight{})
			return
		}
		if f.PatientID > 0 && f.PatientID != own {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		f.PatientID = own
	}

	insights, err := h.repo.List(r.Context(), f)
	if err != nil {
		writeFailure(w, r, err, "failed to list insights")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(insights))
}

func (h *AIInsightHandler) Create(w http.ResponseWriter, r *http.Request) {
	var insight domain.AIInsight
	if err := decodeBody(r, &insight); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	insight.ID = ""
	insight.CreatedAt = timeNow().UTC()
	if err := insight.Validate(); err != nil {
		writeFailure(w, r, err, "failed to create insight")
		return
	}

	patient, err := h.patients.GetByID(r.Context(), insight.PatientID)
	if err != nil {
		writeFailure(w, r, err, "failed to create insight")
		return
	}
	if patient == nil {
		writeError(w, http.StatusBadRequest, "patient not found")
		return
	}

	if err := h.repo.Create(r.Context(), &insight); err != nil {
		writeFailure(w, r, err, "failed to create insight")
		return
	}

	h.activity.Record(r, "create", "ai-insights", insight.ID, map[string]interface{}{"patient_id": insight.PatientID})
	writeJSON(w, http.StatusCreated, insight)
}

func (h *AIInsightHandler) load(w http.ResponseWriter, r *http.Request) (*domain.AIInsight, bool) {
	id := mux.Vars(r)["id"]
	insight, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err, "failed to get insight")
		return nil, false
	}
	if insight == nil {
		writeError(w, http.StatusNotFound, "insight not found")
		return nil, false
	}
	if !h.allowed(w, r, insight.PatientID) {
		return nil, false
	}
	return insight, true
}

func (h *AIInsightHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	insight, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, insight)
}

func (h *AIInsightHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	deleted, err := h.repo.Delete(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err, "failed to delete insight")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "insight not found")
		return
	}

	h.activity.Record(r, "delete", "ai-insights", id, nil)
	w.WriteHeader(http.StatusNoContent)
}
