package domain

import (
	"fmt"
	"regexp"
)

// Role identifies the clinic role a user holds.
type Role string

const (
	RolePatient          Role = "Patient"
	RoleDoctor           Role = "Doctor"
	RolePharmacist       Role = "Pharmacist"
	RoleAdministrator    Role = "Administrator"
	RoleInventoryManager Role = "InventoryManager"
	RoleLabSupervisor    Role = "LabSupervisor"
	RoleLabStaff         Role = "LabStaff"
	RoleTechnician       Role = "Technician"
)

// RoleDescriptor describes where a role's profile documents live and the
// shape of its display identifiers.
type RoleDescriptor struct {
	Role       Role
	Collection string
	// IDField is the document field holding the display identifier
	// (e.g. "doctor_id" for DOC-0001).
	IDField string
	Prefix  string
	Pattern *regexp.Regexp

	digits    int
	separator bool
}

// registry is the process-wide, immutable role table. Roles absent from it
// are valid User.Role values that simply receive no profile document.
var registry = map[Role]RoleDescriptor{
	RolePatient:          {Role: RolePatient, Collection: "patients", IDField: "patient_id", Prefix: "PAT", Pattern: regexp.MustCompile(`^PAT-\d{4}$`), digits: 4, separator: true},
	RoleDoctor:           {Role: RoleDoctor, Collection: "doctors", IDField: "doctor_id", Prefix: "DOC", Pattern: regexp.MustCompile(`^DOC-\d{4}$`), digits: 4, separator: true},
	RolePharmacist:       {Role: RolePharmacist, Collection: "pharmacists", IDField: "pharmacist_id", Prefix: "PHAR", Pattern: regexp.MustCompile(`^PHAR-\d{4}$`), digits: 4, separator: true},
	RoleAdministrator:    {Role: RoleAdministrator, Collection: "administrators", IDField: "administrator_id", Prefix: "ADM", Pattern: regexp.MustCompile(`^ADM-\d{4}$`), digits: 4, separator: true},
	RoleInventoryManager: {Role: RoleInventoryManager, Collection: "inventory_managers", IDField: "inventory_manager_id", Prefix: "INV", Pattern: regexp.MustCompile(`^INV-\d{4}$`), digits: 4, separator: true},
	RoleLabSupervisor:    {Role: RoleLabSupervisor, Collection: "lab_supervisors", IDField: "supervisor_id", Prefix: "LSUP", Pattern: regexp.MustCompile(`^LSUP-\d{4}$`), digits: 4, separator: true},
	RoleLabStaff:         {Role: RoleLabStaff, Collection: "lab_staff", IDField: "staff_id", Prefix: "LAB", Pattern: regexp.MustCompile(`^LAB-\d{4}$`), digits: 4, separator: true},
	RoleTechnician:       {Role: RoleTechnician, Collection: "technicians", IDField: "technician_id", Prefix: "T", Pattern: regexp.MustCompile(`^T\d{3}$`), digits: 3, separator: false},
}

// LookupRole returns the descriptor for a role, or ok=false when the role
// has no profile collection.
func LookupRole(r Role) (RoleDescriptor, bool) {
	d, ok := registry[r]
	return d, ok
}

// RegisteredRoles returns every role that owns a profile collection.
func RegisteredRoles() []Role {
	roles := make([]Role, 0, len(registry))
	for r := range registry {
		roles = append(roles, r)
	}
	return roles
}

// FormatIdentifier renders n as a display identifier, zero-padded to the
// role's fixed width (PAT-0001, T001, ...).
func (d RoleDescriptor) FormatIdentifier(n int) string {
	if d.separator {
		return fmt.Sprintf("%s-%0*d", d.Prefix, d.digits, n)
	}
	return fmt.Sprintf("%s%0*d", d.Prefix, d.digits, n)
}

// ParseIdentifier extracts the numeric suffix from a display identifier.
// Identifiers that do not match the role's pattern are rejected.
func (d RoleDescriptor) ParseIdentifier(id string) (int, bool) {
	if !d.Pattern.MatchString(id) {
		return 0, false
	}
	start := len(d.Prefix)
	if d.separator {
		start++
	}
	n := 0
	for _, c := range id[start:] {
		n = n*10 + int(c-'0')
	}
	return n, true
}
