package handler

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/yusufkecer/hospital-backend/internal/bmi"
	"github.com/yusufkecer/hospital-backend/internal/domain"
	"github.com/yusufkecer/hospital-backend/internal/middleware"
)

type PatientHandler struct {
	repo     PatientStore
	insights InsightStore
	activity *Activity
}

func NewPatientHandler(repo PatientStore, insights InsightStore, activity *Activity) *PatientHandler {
	return &PatientHandler{repo: repo, insights: insights, activity: activity}
}

// canAccessPatient lets staff see every record and patients only their own.
func canAccessPatient(p middleware.Principal, patient *domain.Patient) bool {
	if p.Role.Staff() {
		return true
	}
	return patient.AccountID != nil && *patient.AccountID == p.AccountID
}

// loadPatient resolves a patient id, answering 404 or 403 itself when the
// caller cannot proceed.
func loadPatient(w http.ResponseWriter, r *http.Request, repo PatientStore, id int64) (*domain.Patient, bool) {
	patient, err := repo.GetByID(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err, "failed to get patient")
		return nil, false
	}
	if patient == nil {
		writeError(w, http.StatusNotFound, "patient not found")
		return nil, false
	}
	p, _ := middleware.PrincipalFromContext(r.Context())
	if !canAccessPatient(p, patient) {
		writeError(w, http.StatusForbidden, "forbidden")
		return nil, false
	}
	return patient, true
}

func (h *PatientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var patient domain.Patient
	if err := decodeBody(r, &patient); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	patient.ID = 0
	applyBMI(&patient)
	if err := patient.Validate(); err != nil {
		writeFailure(w, r, err, "failed to create patient")
		return
	}

	id, err := h.repo.Create(r.Context(), &patient)
	if err != nil {
		writeFailure(w, r, err, "failed to create patient")
		return
	}
	patient.ID = id

	h.activity.Record(r, "create", "patients", id, nil)
	writeJSON(w, http.StatusCreated, patient)
}

func (h *PatientHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	var f domain.PatientFilter
	if err := decodeQuery(r, &f); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query parameters")
		return
	}
	f.Normalize()

	patients, err := h.repo.List(r.Context(), f)
	if err != nil {
		writeFailure(w, r, err, "failed to list patients")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(patients))
}

func (h *PatientHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFromContext(r.Context())

	patient, err := h.repo.GetByAccountID(r.Context(), p.AccountID)
	if err != nil {
		writeFailure(w, r, err, "failed to get patient")
		return
	}
	if patient == nil {
		writeError(w, http.StatusNotFound, "patient not found")
		return
	}
	writeJSON(w, http.StatusOK, patient)
}

func (h *PatientHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid patient id")
		return
	}
	patient, ok := loadPatient(w, r, h.repo, id)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, patient)
}

// Update applies the body on top of the stored record, so omitted fields
// keep their current values.
func (h *PatientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid patient id")
		return
	}
	patient, ok := loadPatient(w, r, h.repo, id)
	if !ok {
		return
	}
	// The body decodes through patient.AccountID, so keep a copy of the value.
	var accountID *int64
	if patient.AccountID != nil {
		v := *patient.AccountID
		accountID = &v
	}

	if err := decodeBody(r, patient); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	patient.ID = id
	if p, _ := middleware.PrincipalFromContext(r.Context()); p.Role != domain.RoleAdmin {
		patient.AccountID = accountID
	}
	applyBMI(patient)
	if err := patient.Validate(); err != nil {
		writeFailure(w, r, err, "failed to update patient")
		return
	}

	if err := h.repo.Update(r.Context(), patient); err != nil {
		writeFailure(w, r, err, "failed to update patient")
		return
	}

	h.activity.Record(r, "update", "patients", id, nil)
	writeJSON(w, http.StatusOK, patient)
}

func (h *PatientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid patient id")
		return
	}

	deleted, err := h.repo.Delete(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err, "failed to delete patient")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "patient not found")
		return
	}

	h.activity.Record(r, "delete", "patients", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

// RecordBMI computes a BMI from the submitted measurements, stores it on the
// patient and files an insight describing the result.
func (h *PatientHandler) RecordBMI(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid patient id")
		return
	}
	patient, ok := loadPatient(w, r, h.repo, id)
	if !ok {
		return
	}

	var req domain.BMIRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	height, weight, err := req.Measurements()
	if err != nil {
		writeFailure(w, r, err, "failed to calculate bmi")
		return
	}
	result, err := bmi.Calculate(height, weight)
	if err != nil {
		writeFailure(w, r, err, "failed to calculate bmi")
		return
	}

	category := result.Category.String()
	if err := h.repo.UpdateBMI(r.Context(), id, height, weight, result.Value, category); err != nil {
		writeFailure(w, r, err, "failed to save bmi")
		return
	}
	patient.Height = &height
	patient.Weight = &weight
	patient.BMI = &result.Value
	patient.BMICategory = &category

	record := domain.BMIRecord{Result: result, Patient: patient}

	insight := &domain.AIInsight{
		PatientID: id,
		Kind:      domain.InsightKindBMI,
		Title:     fmt.Sprintf("BMI %.1f (%s)", result.Value, category),
		Summary:   result.Interpretation,
		Data: map[string]interface{}{
			"height":   height,
			"weight":   weight,
			"bmi":      result.Value,
			"category": category,
		},
	}
	if err := h.insights.Create(r.Context(), insight); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Int64("patient_id", id).Msg("failed to store bmi insight")
	} else {
		record.InsightID = insight.ID
	}

	h.activity.Record(r, "record-bmi", "patients", id, map[string]interface{}{
		"bmi":      result.Value,
		"category": category,
	})
	writeJSON(w, http.StatusOK, record)
}

// applyBMI keeps the derived bmi columns in step with height and weight.
func applyBMI(p *domain.Patient) {
	if p.Height == nil || p.Weight == nil {
		p.BMI = nil
		p.BMICategory = nil
		return
	}
	result, err := bmi.Calculate(*p.Height, *p.Weight)
	if err != nil {
		return
	}
	category := result.Category.String()
	p.BMI = &result.Value
	p.BMICategory = &category
}
