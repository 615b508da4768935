package service

import (
	"time"

	"github.com/clinicore/clinic-system/internal/core/domain"
)

// buildProfileDefaults produces the initial field set for a new role
// profile from the parent user record. Pure function: the caller persists
// the result inside the cascade transaction.
func buildProfileDefaults(user *domain.User, desc domain.RoleDescriptor, identifier string, now time.Time) *domain.Profile {
	p := &domain.Profile{
		Role:       desc.Role,
		Identifier: identifier,
		UserID:     user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Phone:      user.Phone,
		IsActive:   true,
		JoinDate:   now,
	}

	switch desc.Role {
	case domain.RoleDoctor:
		p.Extra = map[string]any{
			"specialty":              "General Medicine",
			"isAcceptingNewPatients": true,
		}
	case domain.RolePatient:
		extra := map[string]any{}
		if user.Age > 0 {
			extra["age"] = user.Age
		}
		if user.Gender != "" {
			extra["gender"] = user.Gender
		}
		if user.DOB != nil {
			extra["dob"] = user.DOB.UTC()
		}
		if user.Address != "" {
			extra["address"] = user.Address
		}
		p.Extra = extra
	case domain.RoleLabStaff, domain.RoleTechnician, domain.RolePharmacist:
		p.Extra = map[string]any{"shift": "morning"}
	case domain.RoleAdministrator:
		p.Extra = map[string]any{"department": "Administration"}
	case domain.RoleInventoryManager:
		p.Extra = map[string]any{"department": "Inventory"}
	case domain.RoleLabSupervisor:
		p.Extra = map[string]any{"department": "Laboratory"}
	}
	return p
}
