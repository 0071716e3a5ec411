package domain

import "time"

type ActivityLog struct {
	ID         string                 `json:"id" bson:"_id,omitempty"`
	AccountID  int64                  `json:"account_id" bson:"account_id"`
	Action     string                 `json:"action" bson:"action"`
	Resource   string                 `json:"resource" bson:"resource"`
	ResourceID string                 `json:"resource_id,omitempty" bson:"resource_id,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty" bson:"details,omitempty"`
	CreatedAt  time.Time              `json:"created_at" bson:"created_at"`
}

func (l *ActivityLog) Validate() error {
	if blank(l.Action) {
		return invalid("action is required", "action")
	}
	if blank(l.Resource) {
		return invalid("resource is required", "resource")
	}
	return nil
}
