package domain

import "time"

const InsightKindBMI = "bmi"

type AIInsight struct {
	ID        string                 `json:"id" bson:"_id,omitempty"`
	PatientID int64                  `json:"patient_id" bson:"patient_id"`
	Kind      string                 `json:"kind" bson:"kind"`
	Title     string                 `json:"title" bson:"title"`
	Summary   string                 `json:"summary" bson:"summary"`
	Data      map[string]interface{} `json:"data,omitempty" bson:"data,omitempty"`
	CreatedAt time.Time              `json:"created_at" bson:"created_at"`
}

func (i *AIInsight) Validate() error {
	if i.PatientID <= 0 {
		return invalid("patient_id is required", "patient_id")
	}
	if blank(i.Kind) || blank(i.Summary) {
		return invalid("kind and summary are required", "kind", "summary")
	}
	return nil
}
