package domain

import "strings"

// ValidationError is returned by Validate methods when a record fails its
// boundary checks. Handlers answer it with 400.
type ValidationError struct {
	Fields []string
	Msg    string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func invalid(msg string, fields ...string) *ValidationError {
	return &ValidationError{Fields: fields, Msg: msg}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
