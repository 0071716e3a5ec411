package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/hlog"

	"github.com/yusufkecer/hospital-backend/internal/domain"
	"github.com/yusufkecer/hospital-backend/internal/middleware"
	"github.com/yusufkecer/hospital-backend/internal/realtime"
)

const (
	EventMessageCreated = "message.created"
	EventMessageRead    = "message.read"
)

type MessageHandler struct {
	repo     MessageStore
	accounts AccountStore
	push     Publisher
	activity *Activity
}

func NewMessageHandler(repo MessageStore, accounts AccountStore, push Publisher, activity *Activity) *MessageHandler {
	return &MessageHandler{repo: repo, accounts: accounts, push: push, activity: activity}
}

// GetAll returns the conversation with ?with=<account id>, or the caller's
// inbox when no peer is given.
func (h *MessageHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFromContext(r.Context())

	page := domain.Page{}
	if err := decodeQuery(r, &page); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query parameters")
		return
	}
	page.Normalize()

	var (
		messages []domain.Message
		err      error
	)
	if raw := r.URL.Query().Get("with"); raw != "" {
		peer, perr := strconv.ParseInt(raw, 10, 64)
		if perr != nil || peer <= 0 {
			writeError(w, http.StatusBadRequest, "invalid with parameter")
			return
		}
		messages, err = h.repo.Conversation(r.Context(), p.AccountID, peer, page.Limit)
	} else {
		messages, err = h.repo.Inbox(r.Context(), p.AccountID, page.Limit)
	}
	if err != nil {
		writeFailure(w, r, err, "failed to list messages")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(messages))
}

func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFromContext(r.Context())

	var msg domain.Message
	if err := decodeBody(r, &msg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	msg.ID = 0
	msg.SenderID = p.AccountID
	msg.Read = false
	if err := msg.Validate(); err != nil {
		writeFailure(w, r, err, "failed to send message")
		return
	}

	recipient, err := h.accounts.GetByID(r.Context(), msg.RecipientID)
	if err != nil {
		writeFailure(w, r, err, "failed to send message")
		return
	}
	if recipient == nil {
		writeError(w, http.StatusBadRequest, "recipient not found")
		return
	}

	id, err := h.repo.Create(r.Context(), &msg)
	if err != nil {
		writeFailure(w, r, err, "failed to send message")
		return
	}
	msg.ID = id
	msg.CreatedAt = time.Now().UTC()

	h.publish(r, msg.RecipientID, EventMessageCreated, msg)
	h.activity.Record(r, "create", "messages", id, map[string]interface{}{"recipient_id": msg.RecipientID})
	writeJSON(w, http.StatusCreated, msg)
}

func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid message id")
		return
	}

	msg, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err, "failed to get message")
		return
	}
	if msg == nil {
		writeError(w, http.StatusNotFound, "message not found")
		return
	}
	p, _ := middleware.PrincipalFromContext(r.Context())
	if msg.RecipientID != p.AccountID {
		writeError(w, http.StatusForbidden, "only the recipient can mark a message as read")
		return
	}

	if !msg.Read {
		if err := h.repo.MarkRead(r.Context(), id); err != nil {
			writeFailure(w, r, err, "failed to mark message read")
			return
		}
		msg.Read = true
		h.publish(r, msg.SenderID, EventMessageRead, msg)
	}
	writeJSON(w, http.StatusOK, msg)
}

func (h *MessageHandler) publish(r *http.Request, accountID int64, kind string, msg interface{}) {
	if h.push == nil {
		return
	}
	if err := h.push.Publish(accountID, realtime.Event{Type: kind, Data: msg}); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Str("event", kind).Msg("failed to push event")
	}
}
