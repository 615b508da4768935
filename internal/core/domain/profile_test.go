package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestProfileMarshalJSON_RoleSpecificIdentifierField(t *testing.T) {
	p := &Profile{
		ID:         "665f1c2e8b3d2a0001a1b2c3",
		Role:       RoleDoctor,
		Identifier: "DOC-0001",
		UserID:     "665f1c2e8b3d2a0001a1b2c2",
		Name:       "Dr. Alice",
		Email:      "alice@clinic.test",
		IsActive:   true,
		JoinDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Extra: map[string]any{
			"specialty":              "General Medicine",
			"isAcceptingNewPatients": true,
		},
	}

	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if out["doctor_id"] != "DOC-0001" {
		t.Errorf("expected doctor_id DOC-0001, got %v", out["doctor_id"])
	}
	if _, present := out["identifier"]; present {
		t.Error("generic identifier field must not leak into the payload")
	}
	if out["user"] != p.UserID {
		t.Errorf("expected user back-reference %q, got %v", p.UserID, out["user"])
	}
	if out["specialty"] != "General Medicine" {
		t.Errorf("extra fields must be flattened, got %v", out["specialty"])
	}
	if _, present := out["phone"]; present {
		t.Error("empty phone must be omitted")
	}
}

func TestProfileMarshalJSON_TechnicianField(t *testing.T) {
	p := &Profile{Role: RoleTechnician, Identifier: "T001", Phone: "555-0101"}

	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if out["technician_id"] != "T001" {
		t.Errorf("expected technician_id T001, got %v", out["technician_id"])
	}
	if out["phone"] != "555-0101" {
		t.Errorf("expected phone in payload, got %v", out["phone"])
	}
}
