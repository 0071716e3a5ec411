package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"

	"github.com/yusufkecer/hospital-backend/internal/domain"
	"github.com/yusufkecer/hospital-backend/internal/middleware"
)

const mailTimeout = 30 * time.Second

type AppointmentHandler struct {
	repo     AppointmentStore
	patients PatientStore
	accounts AccountStore
	mailer   Mailer
	activity *Activity
}

func NewAppointmentHandler(repo AppointmentStore, patients PatientStore, accounts AccountStore, mailer Mailer, activity *Activity) *AppointmentHandler {
	return &AppointmentHandler{repo: repo, patients: patients, accounts: accounts, mailer: mailer, activity: activity}
}

// ownPatientID returns the patient record id linked to a patient-role
// caller, or zero when the account has no record.
func ownPatientID(ctx context.Context, repo PatientStore, p middleware.Principal) (int64, error) {
	patient, err := repo.GetByAccountID(ctx, p.AccountID)
	if err != nil || patient == nil {
		return 0, err
	}
	return patient.ID, nil
}

func (h *AppointmentHandler) load(w http.ResponseWriter, r *http.Request) (*domain.Appointment, bool) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid appointment id")
		return nil, false
	}

	appt, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err, "failed to get appointment")
		return nil, false
	}
	if appt == nil {
		writeError(w, http.StatusNotFound, "appointment not found")
		return nil, false
	}

	p, _ := middleware.PrincipalFromContext(r.Context())
	if p.Role == domain.RolePatient {
		own, err := ownPatientID(r.Context(), h.patients, p)
		if err != nil {
			writeFailure(w, r, err, "failed to get appointment")
			return nil, false
		}
		if own == 0 || own != appt.PatientID {
			writeError(w, http.StatusForbidden, "forbidden")
			return nil, false
		}
	}
	return appt, true
}

func (h *AppointmentHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	var f domain.AppointmentFilter
	if err := decodeQuery(r, &f); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query parameters")
		return
	}
	if f.Date != "" {
		if _, err := time.Parse("2006-01-02", f.Date); err != nil {
			writeError(w, http.StatusBadRequest, "date must be formatted as YYYY-MM-DD")
			return
		}
	}
	f.Normalize()

	p, _ := middleware.PrincipalFromContext(r.Context())
	if p.Role == domain.RolePatient {
		own, err := ownPatientID(r.Context(), h.patients, p)
		if err != nil {
			writeFailure(w, r, err, "failed to list appointments")
			return
		}
		if own == 0 {
			writeJSON(w, http.StatusOK, []domain.Appointment{})
			return
		}
		f.PatientID = own
	}

	appts, err := h.repo.List(r.Context(), f)
	if err != nil {
		writeFailure(w, r, err, "failed to list appointments")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(appts))
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var appt domain.Appointment
	if err := decodeBody(r, &appt); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	appt.ID = 0

	p, _ := middleware.PrincipalFromContext(r.Context())
	if p.Role == domain.RolePatient {
		own, err := ownPatientID(r.Context(), h.patients, p)
		if err != nil {
			writeFailure(w, r, err, "failed to create appointment")
			return
		}
		if own == 0 {
			writeError(w, http.StatusForbidden, "no patient record linked to this account")
			return
		}
		appt.PatientID = own
		appt.Status = domain.AppointmentScheduled
	}

	if err := appt.Validate(); err != nil {
		writeFailure(w, r, err, "failed to create appointment")
		return
	}

	patient, ok := h.checkParties(w, r, &appt)
	if !ok {
		return
	}

	id, err := h.repo.Create(r.Context(), &appt)
	if err != nil {
		writeFailure(w, r, err, "failed to create appointment")
		return
	}
	appt.ID = id

	h.sendConfirmation(r, patient, &appt)
	h.activity.Record(r, "create", "appointments", id, map[string]interface{}{
		"patient_id": appt.PatientID,
		"doctor_id":  appt.DoctorID,
	})
	writeJSON(w, http.StatusCreated, appt)
}

// checkParties verifies the patient and doctor exist and that the doctor is
// free at the requested time.
func (h *AppointmentHandler) checkParties(w http.ResponseWriter, r *http.Request, appt *domain.Appointment) (*domain.Patient, bool) {
	patient, err := h.patients.GetByID(r.Context(), appt.PatientID)
	if err != nil {
		writeFailure(w, r, err, "failed to get patient")
		return nil, false
	}
	if patient == nil {
		writeError(w, http.StatusBadRequest, "patient not found")
		return nil, false
	}

	doctor, err := h.accounts.GetByID(r.Context(), appt.DoctorID)
	if err != nil {
		writeFailure(w, r, err, "failed to get doctor")
		return nil, false
	}
	if doctor == nil || doctor.Role != domain.RoleDoctor {
		writeError(w, http.StatusBadRequest, "doctor not found")
		return nil, false
	}

	if appt.Status == domain.AppointmentScheduled || appt.Status == domain.AppointmentConfirmed {
		conflict, err := h.repo.HasConflict(r.Context(), appt.DoctorID, appt.ScheduledAt, appt.ID)
		if err != nil {
			writeFailure(w, r, err, "failed to check availability")
			return nil, false
		}
		if conflict {
			writeError(w, http.StatusConflict, "doctor already has an appointment at this time")
			return nil, false
		}
	}
	return patient, true
}

func (h *AppointmentHandler) sendConfirmation(r *http.Request, patient *domain.Patient, appt *domain.Appointment) {
	if h.mailer == nil || patient.Email == nil || *patient.Email == "" {
		return
	}
	logger := hlog.FromRequest(r).With().Int64("appointment_id", appt.ID).Logger()
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), mailTimeout)
	to, name, snapshot := *patient.Email, patient.FullName(), *appt

	go func() {
		defer cancel()
		if err := h.mailer.SendAppointmentConfirmation(ctx, to, name, &snapshot); err != nil {
			logger.Error().Err(err).Msg("failed to send appointment confirmation")
		}
	}()
}

func (h *AppointmentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	appt, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	appt, ok := h.load(w, r)
	if !ok {
		return
	}
	id, previous := appt.ID, appt.Status

	if err := decodeBody(r, appt); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	appt.ID = id
	if err := appt.Validate(); err != nil {
		writeFailure(w, r, err, "failed to update appointment")
		return
	}
	if !previous.CanTransitionTo(appt.Status) {
		writeError(w, http.StatusBadRequest, "cannot change status from "+string(previous)+" to "+string(appt.Status))
		return
	}
	if _, ok := h.checkParties(w, r, appt); !ok {
		return
	}

	if err := h.repo.Update(r.Context(), appt); err != nil {
		writeFailure(w, r, err, "failed to update appointment")
		return
	}

	h.activity.Record(r, "update", "appointments", id, nil)
	writeJSON(w, http.StatusOK, appt)
}

// UpdateStatus moves an appointment along its lifecycle. Patients may only
// cancel their own appointments.
func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	appt, ok := h.load(w, r)
	if !ok {
		return
	}

	var req domain.StatusUpdate
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	next := domain.AppointmentStatus(req.Status)
	if !next.Valid() {
		writeError(w, http.StatusBadRequest, "invalid appointment status: "+req.Status)
		return
	}

	p, _ := middleware.PrincipalFromContext(r.Context())
	if p.Role == domain.RolePatient && next != domain.AppointmentCancelled {
		writeError(w, http.StatusForbidden, "patients may only cancel appointments")
		return
	}
	if !appt.Status.CanTransitionTo(next) {
		writeError(w, http.StatusBadRequest, "cannot change status from "+string(appt.Status)+" to "+string(next))
		return
	}

	if err := h.repo.UpdateStatus(r.Context(), appt.ID, next); err != nil {
		writeFailure(w, r, err, "failed to update appointment status")
		return
	}
	from := appt.Status
	appt.Status = next

	h.activity.Record(r, "update-status", "appointments", appt.ID, map[string]interface{}{
		"from": from,
		"to":   next,
	})
	writeJSON(w, http.StatusOK, appt)
}

func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}

	deleted, err := h.repo.Delete(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err, "failed to delete appointment")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "appointment not found")
		return
	}

	h.activity.Record(r, "delete", "appointments", id, nil)
	w.WriteHeader(http.StatusNoContent)
}
