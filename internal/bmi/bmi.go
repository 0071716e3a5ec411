// Package bmi computes and classifies Body Mass Index values.
package bmi

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	MaxHeightCm = 300
	MaxWeightKg = 1000
)

type Category int

const (
	SeverelyUnderweight Category = iota
	Underweight
	NormalWeight
	Overweight
	ObeseClassI
	ObeseClassII
	ObeseClassIII
)

// band lower bounds, indexed by Category. Each band is [lower, next lower).
var lowerBounds = [...]float64{
	SeverelyUnderweight: 0,
	Underweight:         16,
	NormalWeight:        18.5,
	Overweight:          25,
	ObeseClassI:         30,
	ObeseClassII:        35,
	ObeseClassIII:       40,
}

var categoryNames = [...]string{
	SeverelyUnderweight: "Severely Underweight",
	Underweight:         "Underweight",
	NormalWeight:        "Normal Weight",
	Overweight:          "Overweight",
	ObeseClassI:         "Obese Class I",
	ObeseClassII:        "Obese Class II",
	ObeseClassIII:       "Obese Class III",
}

var interpretations = [...]string{
	SeverelyUnderweight: "Your BMI indicates severe thinness. Please consult a doctor for a nutritional assessment.",
	Underweight:         "You are below the healthy weight range. A balanced, calorie-sufficient diet is recommended.",
	NormalWeight:        "You are within the healthy weight range. Keep up a balanced diet and regular activity.",
	Overweight:          "You are above the healthy weight range. Regular exercise and dietary changes can help.",
	ObeseClassI:         "Your BMI falls in obesity class I. Consider a weight management plan with your doctor.",
	ObeseClassII:        "Your BMI falls in obesity class II. Medical supervision for weight loss is advised.",
	ObeseClassIII:       "Your BMI falls in obesity class III. Please seek medical advice as soon as possible.",
}

func (c Category) String() string {
	if c < SeverelyUnderweight || c > ObeseClassIII {
		return "Unknown"
	}
	return categoryNames[c]
}

func (c Category) Interpretation() string {
	if c < SeverelyUnderweight || c > ObeseClassIII {
		return ""
	}
	return interpretations[c]
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	for i, name := range categoryNames {
		if name == string(text) {
			*c = Category(i)
			return nil
		}
	}
	return fmt.Errorf("bmi: unknown category %q", text)
}

type Result struct {
	Value          float64  `json:"value"`
	Category       Category `json:"category"`
	Interpretation string   `json:"interpretation"`
}

// ValidationError reports an input that cannot produce a BMI value.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	ErrMissing    = &ValidationError{Message: "please enter both height and weight"}
	errNotNumeric = &ValidationError{Message: "please enter valid numbers for height and weight"}
	errHeight     = &ValidationError{Field: "height", Message: "height must be greater than 0, max 300 cm"}
	errWeight     = &ValidationError{Field: "weight", Message: "weight must be greater than 0, max 1000 kg"}
)

// Classify maps a BMI value onto its category. Values below zero fall into
// the lowest band.
func Classify(value float64) Category {
	for c := ObeseClassIII; c > SeverelyUnderweight; c-- {
		if value >= lowerBounds[c] {
			return c
		}
	}
	return SeverelyUnderweight
}

// Round rounds v to one decimal place, halves away from zero.
func Round(v float64) float64 {
	return math.Round(v*10) / 10
}

// Calculate computes the BMI for a height in centimetres and a weight in
// kilograms. The category is taken from the rounded value.
func Calculate(heightCm, weightKg float64) (Result, error) {
	if !finite(heightCm) || !finite(weightKg) {
		return Result{}, errNotNumeric
	}
	if heightCm <= 0 || heightCm > MaxHeightCm {
		return Result{}, errHeight
	}
	if weightKg <= 0 || weightKg > MaxWeightKg {
		return Result{}, errWeight
	}

	meters := heightCm / 100
	value := Round(weightKg / (meters * meters))
	category := Classify(value)

	return Result{
		Value:          value,
		Category:       category,
		Interpretation: category.Interpretation(),
	}, nil
}

// Parse validates raw form input and calculates the BMI.
func Parse(height, weight string) (Result, error) {
	height = strings.TrimSpace(height)
	weight = strings.TrimSpace(weight)
	if height == "" || weight == "" {
		return Result{}, ErrMissing
	}

	h, err := strconv.ParseFloat(height, 64)
	if err != nil {
		return Result{}, errNotNumeric
	}
	w, err := strconv.ParseFloat(weight, 64)
	if err != nil {
		return Result{}, errNotNumeric
	}
	return Calculate(h, w)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
