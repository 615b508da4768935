package handler

import (
	"time"

	"github.com/clinicore/clinic-system/internal/core/domain"
)

type createUserRequest struct {
	Name     string     `json:"name" validate:"required"`
	Email    string     `json:"email" validate:"required,email"`
	Phone    string     `json:"phone,omitempty"`
	Address  string     `json:"address,omitempty"`
	Age      int        `json:"age,omitempty" validate:"omitempty,gte=0,lte=150"`
	Gender   string     `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	DOB      *time.Time `json:"dob,omitempty"`
	Role     string     `json:"role,omitempty"`
	Password string     `json:"password,omitempty" validate:"omitempty,min=8"`
}

type updateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    *string `json:"phone,omitempty"`
	Address  *string `json:"address,omitempty"`
	Age      *int    `json:"age,omitempty" validate:"omitempty,gte=0,lte=150"`
	Gender   *string `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	IsActive *bool   `json:"isActive,omitempty"`
}

// userResponse is the envelope returned by all user lifecycle endpoints.
// RoleData serialises the role profile with its identifier under the
// role-specific field name (doctor_id, patient_id, ...).
type userResponse struct {
	Success  bool            `json:"success"`
	User     *domain.User    `json:"user,omitempty"`
	RoleData *domain.Profile `json:"roleData,omitempty"`
	Message  string          `json:"message,omitempty"`
}

type listUsersResponse struct {
	Success    bool           `json:"success"`
	Users      []*domain.User `json:"users"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}
