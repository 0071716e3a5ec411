package domain

import (
	"time"

	"github.com/yusufkecer/hospital-backend/internal/bmi"
)

var validGenders = map[string]bool{"male": true, "female": true, "other": true}

var validBloodGroups = map[string]bool{
	"A+": true, "A-": true, "B+": true, "B-": true,
	"AB+": true, "AB-": true, "O+": true, "O-": true,
}

const dateLayout = "2006-01-02"

type Patient struct {
	ID          int64     `json:"id"`
	AccountID   *int64    `json:"account_id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Gender      *string   `json:"gender"`
	DateOfBirth *string   `json:"date_of_birth"`
	Phone       *string   `json:"phone"`
	Email       *string   `json:"email"`
	Address     *string   `json:"address"`
	BloodGroup  *string   `json:"blood_group"`
	Height      *float64  `json:"height"`
	Weight      *float64  `json:"weight"`
	BMI         *float64  `json:"bmi"`
	BMICategory *string   `json:"bmi_category"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

func (p *Patient) Validate() error {
	if blank(p.FirstName) || blank(p.LastName) {
		return invalid("first_name and last_name are required", "first_name", "last_name")
	}
	if p.Gender != nil && !validGenders[*p.Gender] {
		return invalid("gender must be male, female or other", "gender")
	}
	if p.DateOfBirth != nil {
		dob, err := time.Parse(dateLayout, *p.DateOfBirth)
		if err != nil {
			return invalid("date_of_birth must be formatted as YYYY-MM-DD", "date_of_birth")
		}
		if dob.After(time.Now()) {
			return invalid("date_of_birth cannot be in the future", "date_of_birth")
		}
	}
	if p.Email != nil && *p.Email != "" && !ValidEmail(*p.Email) {
		return invalid("invalid email format", "email")
	}
	if p.BloodGroup != nil && !validBloodGroups[*p.BloodGroup] {
		return invalid("invalid blood_group", "blood_group")
	}
	if p.Height != nil && (*p.Height <= 0 || *p.Height > 300) {
		return invalid("height must be greater than 0, max 300 cm", "height")
	}
	if p.Weight != nil && (*p.Weight <= 0 || *p.Weight > 1000) {
		return invalid("weight must be greater than 0, max 1000 kg", "weight")
	}
	return nil
}

// BMIRequest is the body of POST /api/patients/{id}/bmi and /api/bmi.
type BMIRequest struct {
	Height *float64 `json:"height"`
	Weight *float64 `json:"weight"`
}

// Measurements returns height and weight, or bmi.ErrMissing if either was
// left out of the body.
func (r BMIRequest) Measurements() (height, weight float64, err error) {
	if r.Height == nil || r.Weight == nil {
		return 0, 0, bmi.ErrMissing
	}
	return *r.Height, *r.Weight, nil
}

// BMIRecord is returned after a measurement is stored on a patient.
type BMIRecord struct {
	Result    bmi.Result `json:"result"`
	Patient   *Patient   `json:"patient"`
	InsightID string     `json:"insight_id,omitempty"`
}
