package handler

import (
	"net/http"

	"github.com/yusufkecer/hospital-backend/internal/domain"
	"github.com/yusufkecer/hospital-backend/internal/middleware"
)

type FitnessHandler struct {
	repo     FitnessStore
	patients PatientStore
	activity *Activity
}

func NewFitnessHandler(repo FitnessStore, patients PatientStore, activity *Activity) *FitnessHandler {
	return &FitnessHandler{repo: repo, patients: patients, activity: activity}
}

// scopePatient resolves which patient a fitness request applies to. Patients
// are pinned to their own record; staff must name one.
func (h *FitnessHandler) scopePatient(w http.ResponseWriter, r *http.Request, requested int64) (int64, bool) {
	p, _ := middleware.PrincipalFromContext(r.Context())
	if p.Role != domain.RolePatient {
		if requested <= 0 {
			writeError(w, http.StatusBadRequest, "patient_id is required")
			return 0, false
		}
		return requested, true
	}

	own, err := ownPatientID(r.Context(), h.patients, p)
	if err != nil {
		writeFailure(w, r, err, "failed to resolve patient")
		return 0, false
	}
	if own == 0 || (requested > 0 && requested != own) {
		writeError(w, http.StatusForbidden, "forbidden")
		return 0, false
	}
	return own, true
}

func (h *FitnessHandler) Create(w http.ResponseWriter, r *http.Request) {
	var data domain.FitnessData
	if err := decodeBody(r, &data); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	data.ID = 0

	patientID, ok := h.scopePatient(w, r, data.PatientID)
	if !ok {
		return
	}
	data.PatientID = patientID

	if err := data.Validate(); err != nil {
		writeFailure(w, r, err, "failed to create fitness data")
		return
	}

	id, err := h.repo.Create(r.Context(), &data)
	if err != nil {
		writeFailure(w, r, err, "failed to create fitness data")
		return
	}
	data.ID = id

	h.activity.Record(r, "create", "fitness-data", id, map[string]interface{}{"patient_id": patientID})
	writeJSON(w, http.StatusCreated, data)
}

func (h *FitnessHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	var f domain.FitnessFilter
	if err := decodeQuery(r, &f); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query parameters")
		return
	}
	f.Normalize()

	patientID, ok := h.scopePatient(w, r, f.PatientID)
	if !ok {
		return
	}
	f.PatientID = patientID

	items, err := h.repo.List(r.Context(), f)
	if err != nil {
		writeFailure(w, r, err, "failed to list fitness data")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(items))
}

func (h *FitnessHandler) load(w http.ResponseWriter, r *http.Request) (*domain.FitnessData, bool) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid fitness data id")
		return nil, false
	}

	data, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err, "failed to get fitness data")
		return nil, false
	}
	if data == nil {
		writeError(w, http.StatusNotFound, "fitness data not found")
		return nil, false
	}
	if _, ok := h.scopePatient(w, r, data.PatientID); !ok {
		return nil, false
	}
	return data, true
}

func (h *FitnessHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	data, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (h *FitnessHandler) Delete(w http.ResponseWriter, r *http.Request) {
	data, ok := h.load(w, r)
	if !ok {
		return
	}

	deleted, err := h.repo.Delete(r.Context(), data.ID)
	if err != nil {
		writeFailure(w, r, err, "failed to delete fitness data")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "fitness data not found")
		return
	}

	h.activity.Record(r, "delete", "fitness-data", data.ID, nil)
	w.WriteHeader(http.StatusNoContent)
}
