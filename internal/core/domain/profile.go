package domain

import (
	"encoding/json"
	"errors"
	"time"
)

var ErrProfileNotFound = errors.New("role profile not found")

// Profile is the role-specific record created, updated, and deleted only in
// lockstep with its owning User. At most one profile exists per user per
// role collection.
type Profile struct {
	ID   string
	Role Role
	// Identifier is the role display identifier (DOC-0001, T001, ...).
	Identifier string
	// UserID is the back-reference to User.ID.
	UserID   string
	Name     string
	Email    string
	Phone    string
	IsActive bool
	JoinDate time.Time
	// Extra holds role-specific fields (specialty, shift, department, ...).
	Extra map[string]any
}

// MarshalJSON renders the identifier under its role-specific field name
// (doctor_id, patient_id, ...) so API payloads match the stored documents.
func (p *Profile) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"id":       p.ID,
		"user":     p.UserID,
		"name":     p.Name,
		"email":    p.Email,
		"isActive": p.IsActive,
		"joinDate": p.JoinDate,
	}
	if p.Phone != "" {
		out["phone"] = p.Phone
	}
	if desc, ok := LookupRole(p.Role); ok {
		out[desc.IDField] = p.Identifier
	}
	for k, v := range p.Extra {
		out[k] = v
	}
	return json.Marshal(out)
}
