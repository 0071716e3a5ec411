package domain

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleDoctor    Role = "doctor"
	RoleReception Role = "reception"
	RolePatient   Role = "patient"
)

// Roles is the closed set of account roles.
var Roles = []Role{RoleAdmin, RoleDoctor, RoleReception, RolePatient}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleReception, RolePatient:
		return true
	}
	return false
}

// Staff reports whether the role belongs to hospital personnel.
func (r Role) Staff() bool {
	return r == RoleAdmin || r == RoleDoctor || r == RoleReception
}
