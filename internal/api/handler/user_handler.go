package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinicore/clinic-system/internal/api/metrics"
	"github.com/clinicore/clinic-system/internal/core/domain"
	"github.com/clinicore/clinic-system/internal/core/ports"
)

// UserHandler exposes the user lifecycle cascade over HTTP.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Create handles POST /v1/users.
//
// @Summary      Create a user together with its role profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "User details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /v1/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	start := time.Now()
	result, err := h.service.CreateUserWithRole(c.Request().Context(), ports.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		Age:      req.Age,
		Gender:   req.Gender,
		DOB:      req.DOB,
		Role:     domain.Role(req.Role),
		Password: req.Password,
	})
	if err != nil {
		metrics.CascadeFailuresTotal.WithLabelValues("create").Inc()
		return err
	}
	metrics.CascadeDuration.WithLabelValues("create").Observe(time.Since(start).Seconds())
	metrics.UsersCreatedTotal.WithLabelValues(string(result.User.Role)).Inc()

	return c.JSON(http.StatusCreated, userResponse{
		Success:  true,
		User:     result.User,
		RoleData: result.Profile,
		Message:  "User created successfully",
	})
}

// Update handles PUT /v1/users/:id.
//
// @Summary      Update a user, propagating shared fields to its role profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User document id"
// @Param        body  body      updateUserRequest  true  "Fields to update"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /v1/users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	start := time.Now()
	result, err := h.service.UpdateUserWithRole(c.Request().Context(), c.Param("id"), ports.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		Age:      req.Age,
		Gender:   req.Gender,
		IsActive: req.IsActive,
	})
	if err != nil {
		metrics.CascadeFailuresTotal.WithLabelValues("update").Inc()
		return err
	}
	metrics.CascadeDuration.WithLabelValues("update").Observe(time.Since(start).Seconds())

	return c.JSON(http.StatusOK, userResponse{
		Success:  true,
		User:     result.User,
		RoleData: result.Profile,
		Message:  "User updated successfully",
	})
}

// Delete handles DELETE /v1/users/:id.
//
// @Summary      Delete a user and its role profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User document id"
// @Success      200  {object}  userResponse
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /v1/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	start := time.Now()
	if err := h.service.DeleteUserWithRole(c.Request().Context(), c.Param("id")); err != nil {
		metrics.CascadeFailuresTotal.WithLabelValues("delete").Inc()
		return err
	}
	metrics.CascadeDuration.WithLabelValues("delete").Observe(time.Since(start).Seconds())

	return c.JSON(http.StatusOK, userResponse{
		Success: true,
		Message: "User deleted successfully",
	})
}

// Get handles GET /v1/users/:id.
//
// @Summary      Get a user and its role profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User document id"
// @Success      200  {object}  userResponse
// @Failure      404  {object}  map[string]string
// @Router       /v1/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	result, err := h.service.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, userResponse{
		Success:  true,
		User:     result.User,
		RoleData: result.Profile,
	})
}

// List handles GET /v1/users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        role    query     string  false  "Filter by role"
// @Param        search  query     string  false  "Partial match on name, email or user_id"
// @Param        active  query     bool    false  "Filter by isActive"
// @Param        page    query     int     false  "Page (1-based)"
// @Param        limit   query     int     false  "Rows per page (max 100)"
// @Success      200     {object}  listUsersResponse
// @Router       /v1/users [get]
func (h *UserHandler) List(c echo.Context) error {
	filter := ports.ListUsersFilter{
		Role:   c.QueryParam("role"),
		Search: c.QueryParam("search"),
	}
	if v := c.QueryParam("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "active must be a boolean")
		}
		filter.Active = &active
	}
	filter.Page, _ = strconv.Atoi(c.QueryParam("page"))
	filter.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	result, err := h.service.ListUsers(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listUsersResponse{
		Success:    true,
		Users:      result.Items,
		Total:      result.Total,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages,
	})
}
