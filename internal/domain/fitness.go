package domain

import "time"

type FitnessData struct {
	ID             int64     `json:"id"`
	PatientID      int64     `json:"patient_id"`
	RecordedOn     string    `json:"recorded_on"`
	Steps          *int      `json:"steps"`
	HeartRate      *int      `json:"heart_rate"`
	CaloriesBurned *float64  `json:"calories_burned"`
	SleepHours     *float64  `json:"sleep_hours"`
	Weight         *float64  `json:"weight"`
	Notes          *string   `json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
}

func (f *FitnessData) Validate() error {
	if f.PatientID <= 0 {
		return invalid("patient_id is required", "patient_id")
	}
	if f.RecordedOn == "" {
		f.RecordedOn = time.Now().Format(dateLayout)
	}
	if _, err := time.Parse(dateLayout, f.RecordedOn); err != nil {
		return invalid("recorded_on must be formatted as YYYY-MM-DD", "recorded_on")
	}
	if f.Steps != nil && *f.Steps < 0 {
		return invalid("steps cannot be negative", "steps")
	}
	if f.HeartRate != nil && (*f.HeartRate < 20 || *f.HeartRate > 250) {
		return invalid("heart_rate must be between 20 and 250", "heart_rate")
	}
	if f.CaloriesBurned != nil && *f.CaloriesBurned < 0 {
		return invalid("calories_burned cannot be negative", "calories_burned")
	}
	if f.SleepHours != nil && (*f.SleepHours < 0 || *f.SleepHours > 24) {
		return invalid("sleep_hours must be between 0 and 24", "sleep_hours")
	}
	if f.Weight != nil && (*f.Weight <= 0 || *f.Weight > 1000) {
		return invalid("weight must be greater than 0, max 1000 kg", "weight")
	}
	return nil
}
