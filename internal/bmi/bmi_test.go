package bmi

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
)

func TestCalculate_ReferenceExample(t *testing.T) {
	res, err := Calculate(175, 70)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Value != 22.9 {
		t.Errorf("expected 22.9, got %v", res.Value)
	}
	if res.Category != NormalWeight {
		t.Errorf("expected Normal Weight, got %s", res.Category)
	}
	if res.Interpretation == "" {
		t.Error("expected interpretation to be set")
	}
}

func TestCalculate_MatchesFormula(t *testing.T) {
	for h := 1.0; h <= 300; h += 7.3 {
		for w := 1.0; w <= 1000; w += 37.1 {
			res, err := Calculate(h, w)
			if err != nil {
				t.Fatalf("Calculate(%v, %v): %v", h, w, err)
			}
			want := math.Round(w/((h/100)*(h/100))*10) / 10
			if res.Value != want {
				t.Fatalf("Calculate(%v, %v) = %v, want %v", h, w, res.Value, want)
			}
			if res.Category != Classify(res.Value) {
				t.Fatalf("category mismatch for %v", res.Value)
			}
		}
	}
}

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{0, "Severely Underweight"},
		{15.99, "Severely Underweight"},
		{16, "Underweight"},
		{18.49, "Underweight"},
		{18.5, "Normal Weight"},
		{24.99, "Normal Weight"},
		{25.0, "Overweight"},
		{29.99, "Overweight"},
		{30, "Obese Class I"},
		{35, "Obese Class II"},
		{39.99, "Obese Class II"},
		{40, "Obese Class III"},
		{120, "Obese Class III"},
	}
	for _, tt := range tests {
		if got := Classify(tt.value).String(); got != tt.want {
			t.Errorf("Classify(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestCalculate_OutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		height float64
		weight float64
		field  string
		msg    string
	}{
		{"zero height", 0, 70, "height", "max 300 cm"},
		{"zero weight", 175, 0, "weight", "max 1000 kg"},
		{"negative height", -10, 70, "height", "max 300 cm"},
		{"height too large", 301, 70, "height", "max 300 cm"},
		{"weight too large", 175, 1001, "weight", "max 1000 kg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Calculate(tt.height, tt.weight)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, verr.Field)
			}
			if !strings.Contains(verr.Message, tt.msg) {
				t.Errorf("expected message to contain %q, got %q", tt.msg, verr.Message)
			}
		})
	}
}

func TestCalculate_UpperBoundsInclusive(t *testing.T) {
	if _, err := Calculate(300, 1000); err != nil {
		t.Fatalf("expected 300 cm / 1000 kg to be accepted, got %v", err)
	}
}

func TestCalculate_NaN(t *testing.T) {
	if _, err := Calculate(math.NaN(), 70); err == nil {
		t.Fatal("expected error for NaN height")
	}
	if _, err := Calculate(175, math.Inf(1)); err == nil {
		t.Fatal("expected error for infinite weight")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		height  string
		weight  string
		wantErr string
		want    float64
	}{
		{"valid", "175", "70", "", 22.9},
		{"whitespace", " 180 ", " 81.5 ", "", 25.2},
		{"missing height", "", "70", "both", 0},
		{"missing weight", "175", "  ", "both", 0},
		{"not a number", "abc", "70", "valid numbers", 0},
		{"nan literal", "NaN", "70", "valid numbers", 0},
		{"too tall", "301", "70", "max 300 cm", 0},
		{"too heavy", "175", "1001", "max 1000 kg", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Parse(tt.height, tt.weight)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Value != tt.want {
				t.Errorf("expected %v, got %v", tt.want, res.Value)
			}
		})
	}
}

func TestResult_JSON(t *testing.T) {
	res, _ := Calculate(175, 70)
	b, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"category":"Normal Weight"`) {
		t.Errorf("expected category name in JSON, got %s", b)
	}

	var back Result
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Category != NormalWeight {
		t.Errorf("expected Normal Weight after decode, got %s", back.Category)
	}
}
