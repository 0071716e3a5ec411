package handler

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/yusufkecer/hospital-backend/internal/domain"
	"github.com/yusufkecer/hospital-backend/internal/middleware"
)

// Activity writes audit entries for mutating requests. Recording is best
// effort: failures are logged and never change the response.
type Activity struct {
	store ActivityStore
}

func NewActivity(store ActivityStore) *Activity {
	return &Activity{store: store}
}

func (a *Activity) Record(r *http.Request, action, resource string, resourceID interface{}, details map[string]interface{}) {
	if a == nil || a.store == nil {
		return
	}
	entry := &domain.ActivityLog{
		Action:   action,
		Resource: resource,
		Details:  details,
	}
	if p, ok := middleware.PrincipalFromContext(r.Context()); ok {
		entry.AccountID = p.AccountID
	}
	if resourceID != nil {
		entry.ResourceID = fmt.Sprint(resourceID)
	}
	if err := a.store.Create(r.Context(), entry); err != nil {
		hlog.FromRequest(r).Warn().Err(err).
			Str("action", action).
			Str("resource", resource).
			Msg("failed to record activity")
	}
}
