package handler

import (
	"net/http"
	"time"

	"github.com/yusufkecer/hospital-backend/internal/domain"
	"github.com/yusufkecer/hospital-backend/internal/middleware"
	"github.com/yusufkecer/hospital-backend/internal/service"
)

type QueueHandler struct {
	repo       QueueStore
	patients   PatientStore
	avgConsult int
	activity   *Activity
	now        func() time.Time
}

func NewQueueHandler(repo QueueStore, patients PatientStore, avgConsultMinutes int, activity *Activity) *QueueHandler {
	return &QueueHandler{
		repo:       repo,
		patients:   patients,
		avgConsult: avgConsultMinutes,
		activity:   activity,
		now:        time.Now,
	}
}

func (h *QueueHandler) today() string {
	return h.now().UTC().Format("2006-01-02")
}

// GetAll lists one day's queue with wait estimates. Estimates are computed
// against the whole department queue before the status filter is applied.
// Patients only see their own entries.
func (h *QueueHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	var f domain.QueueFilter
	if err := decodeQuery(r, &f); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query parameters")
		return
	}
	if f.Date == "" {
		f.Date = h.today()
	}
	if _, err := time.Parse("2006-01-02", f.Date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be formatted as YYYY-MM-DD")
		return
	}
	status := domain.QueueStatus(f.Status)
	if status != "" && !status.Valid() {
		writeError(w, http.StatusBadRequest, "invalid queue status: "+f.Status)
		return
	}
	f.Status = ""

	var own int64
	if p, _ := middleware.PrincipalFromContext(r.Context()); p.Role == domain.RolePatient {
		id, err := ownPatientID(r.Context(), h.patients, p)
		if err != nil {
			writeFailure(w, r, err, "failed to list queue")
			return
		}
		if id == 0 {
			writeJSON(w, http.StatusOK, []domain.QueueEntry{})
			return
		}
		own = id
	}

	entries, err := h.repo.List(r.Context(), f)
	if err != nil {
		writeFailure(w, r, err, "failed to list queue")
		return
	}
	service.EstimateWaits(entries, h.avgConsult)

	out := make([]domain.QueueEntry, 0, len(entries))
	for _, e := range entries {
		if status != "" && e.Status != status {
			continue
		}
		if own != 0 && e.PatientID != own {
			continue
		}
		out = append(out, e)
	}
	writeJSON(w, http.StatusOK, out)
}

// Join appends a patient to today's department queue. The queue number is
// allocated by the store; the wait estimate reflects who is still ahead.
func (h *QueueHandler) Join(w http.ResponseWriter, r *http.Request) {
	var entry domain.QueueEntry
	if err := decodeBody(r, &entry); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	entry.ID = 0
	entry.QueueNumber = 0
	entry.Status = domain.QueueWaiting

	p, _ := middleware.PrincipalFromContext(r.Context())
	if p.Role == domain.RolePatient {
		own, err := ownPatientID(r.Context(), h.patients, p)
		if err != nil {
			writeFailure(w, r, err, "failed to join queue")
			return
		}
		if own == 0 {
			writeError(w, http.StatusForbidden, "no patient record linked to this account")
			return
		}
		entry.PatientID = own
	}

	if err := entry.Validate(); err != nil {
		writeFailure(w, r, err, "failed to join queue")
		return
	}

	day := h.today()
	if err := h.repo.Join(r.Context(), &entry, day); err != nil {
		writeFailure(w, r, err, "failed to join queue")
		return
	}
	entry.CreatedAt = time.Now().UTC()

	if err := h.estimate(r, &entry, day); err != nil {
		writeFailure(w, r, err, "failed to estimate wait")
		return
	}

	h.activity.Record(r, "join", "queue", entry.ID, map[string]interface{}{
		"department":   entry.Department,
		"queue_number": entry.QueueNumber,
	})
	writeJSON(w, http.StatusCreated, entry)
}

func (h *QueueHandler) estimate(r *http.Request, entry *domain.QueueEntry, day string) error {
	queue, err := h.repo.List(r.Context(), domain.QueueFilter{Department: entry.Department, Date: day})
	if err != nil {
		return err
	}
	service.EstimateWait(queue, entry, h.avgConsult)
	return nil
}

func (h *QueueHandler) load(w http.ResponseWriter, r *http.Request) (*domain.QueueEntry, bool) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid queue entry id")
		return nil, false
	}

	entry, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err, "failed to get queue entry")
		return nil, false
	}
	if entry == nil {
		writeError(w, http.StatusNotFound, "queue entry not found")
		return nil, false
	}

	p, _ := middleware.PrincipalFromContext(r.Context())
	if p.Role == domain.RolePatient {
		own, err := ownPatientID(r.Context(), h.patients, p)
		if err != nil {
			writeFailure(w, r, err, "failed to get queue entry")
			return nil, false
		}
		if own == 0 || own != entry.PatientID {
			writeError(w, http.StatusForbidden, "forbidden")
			return nil, false
		}
	}
	return entry, true
}

func (h *QueueHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.load(w, r)
	if !ok {
		return
	}

	day, err := h.repo.QueueDate(r.Context(), entry.ID)
	if err != nil {
		writeFailure(w, r, err, "failed to get queue entry")
		return
	}
	if err := h.estimate(r, entry, day); err != nil {
		writeFailure(w, r, err, "failed to estimate wait")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *QueueHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.load(w, r)
	if !ok {
		return
	}

	var req domain.StatusUpdate
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	next := domain.QueueStatus(req.Status)
	if !next.Valid() {
		writeError(w, http.StatusBadRequest, "invalid queue status: "+req.Status)
		return
	}

	if err := h.repo.UpdateStatus(r.Context(), entry.ID, next); err != nil {
		writeFailure(w, r, err, "failed to update queue status")
		return
	}
	from := entry.Status
	entry.Status = next
	entry.EstimatedWaitMinutes = 0
	if next == domain.QueueWaiting {
		day, err := h.repo.QueueDate(r.Context(), entry.ID)
		if err == nil {
			err = h.estimate(r, entry, day)
		}
		if err != nil {
			writeFailure(w, r, err, "failed to estimate wait")
			return
		}
	}

	h.activity.Record(r, "update-status", "queue", entry.ID, map[string]interface{}{
		"from": from,
		"to":   next,
	})
	writeJSON(w, http.StatusOK, entry)
}

func (h *QueueHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid queue entry id")
		return
	}

	deleted, err := h.repo.Delete(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err, "failed to delete queue entry")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "queue entry not found")
		return
	}

	h.activity.Record(r, "delete", "queue", id, nil)
	w.WriteHeader(http.StatusNoContent)
}
