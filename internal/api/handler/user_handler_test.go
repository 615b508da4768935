package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/clinicore/clinic-system/internal/core/domain"
	"github.com/clinicore/clinic-system/internal/core/ports"
)

type stubUserService struct {
	createFn func(ctx context.Context, input ports.CreateUserInput) (*ports.UserResult, error)
	updateFn func(ctx context.Context, userID string, update ports.UpdateUserInput) (*ports.UserResult, error)
	deleteFn func(ctx context.Context, userID string) error
	getFn    func(ctx context.Context, userID string) (*ports.UserResult, error)
	listFn   func(ctx context.Context, filter ports.ListUsersFilter) (*ports.ListUsersResult, error)
}

func (s *stubUserService) CreateUserWithRole(ctx context.Context, input ports.CreateUserInput) (*ports.UserResult, error) {
	return s.createFn(ctx, input)
}

func (s *stubUserService) UpdateUserWithRole(ctx context.Context, userID string, update ports.UpdateUserInput) (*ports.UserResult, error) {
	return s.updateFn(ctx, userID, update)
}

func (s *stubUserService) DeleteUserWithRole(ctx context.Context, userID string) error {
	return s.deleteFn(ctx, userID)
}

func (s *stubUserService) GetUser(ctx context.Context, userID string) (*ports.UserResult, error) {
	return s.getFn(ctx, userID)
}

func (s *stubUserService) ListUsers(ctx context.Context, filter ports.ListUsersFilter) (*ports.ListUsersResult, error) {
	return s.listFn(ctx, filter)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func TestUserHandler_Create_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubUserService{
		createFn: func(_ context.Context, input ports.CreateUserInput) (*ports.UserResult, error) {
			if input.Name != "Dr. Alice" || input.Role != domain.RoleDoctor {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &ports.UserResult{
				User: &domain.User{ID: "oid-001", UserID: "USR-0001", Name: input.Name, Email: input.Email, Role: input.Role, IsActive: true},
				Profile: &domain.Profile{
					ID: "oid-002", Role: domain.RoleDoctor, Identifier: "DOC-0001", UserID: "oid-001",
					Name: input.Name, Extra: map[string]any{"specialty": "General Medicine"},
				},
			}, nil
		},
	}
	h := NewUserHandler(stub)

	body := strings.NewReader(`{"name":"Dr. Alice","email":"alice@clinic.test","role":"Doctor","password":"s3cret-pass"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/users", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["success"] != true {
		t.Errorf("expected success=true, got %v", resp["success"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["user_id"] != "USR-0001" {
		t.Fatalf("unexpected user payload: %+v", resp["user"])
	}
	roleData, ok := resp["roleData"].(map[string]any)
	if !ok {
		t.Fatalf("expected roleData in response: %+v", resp)
	}
	if roleData["doctor_id"] != "DOC-0001" {
		t.Errorf("expected doctor_id DOC-0001, got %v", roleData["doctor_id"])
	}
}

func TestUserHandler_Create_InvalidPayload(t *testing.T) {
	e := newTestEcho()
	stub := &stubUserService{
		createFn: func(context.Context, ports.CreateUserInput) (*ports.UserResult, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}
	h := NewUserHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/v1/users", strings.NewReader("not-json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Create(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestUserHandler_Create_ValidationFailure(t *testing.T) {
	e := newTestEcho()
	stub := &stubUserService{
		createFn: func(context.Context, ports.CreateUserInput) (*ports.UserResult, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}
	h := NewUserHandler(stub)

	// Missing email, short password.
	req := httptest.NewRequest(http.MethodPost, "/v1/users", strings.NewReader(`{"name":"Bob","password":"short"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Create(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestUserHandler_Create_EmailTaken(t *testing.T) {
	e := newTestEcho()
	stub := &stubUserService{
		createFn: func(context.Context, ports.CreateUserInput) (*ports.UserResult, error) {
			return nil, fmt.Errorf("create user with role: %w", domain.ErrEmailTaken)
		},
	}
	h := NewUserHandler(stub)

	body := strings.NewReader(`{"name":"Dr. Alice","email":"alice@clinic.test","role":"Doctor"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/users", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// The wrapped domain error flows to the central error handler untouched.
	err := h.Create(c)
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUserHandler_Update_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubUserService{
		updateFn: func(_ context.Context, userID string, update ports.UpdateUserInput) (*ports.UserResult, error) {
			if userID != "oid-001" {
				t.Fatalf("unexpected id: %s", userID)
			}
			if update.Name == nil || *update.Name != "Dr. Alicia" {
				t.Fatalf("expected name pointer, got %+v", update)
			}
			if update.Email != nil {
				t.Fatalf("absent fields must stay nil, got %+v", update)
			}
			return &ports.UserResult{
				User: &domain.User{ID: userID, UserID: "USR-0001", Name: *update.Name, Role: domain.RoleDoctor},
			}, nil
		},
	}
	h := NewUserHandler(stub)

	req := httptest.NewRequest(http.MethodPut, "/v1/users/oid-001", strings.NewReader(`{"name":"Dr. Alicia"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("oid-001")

	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_Delete_Success(t *testing.T) {
	e := newTestEcho()
	var deleted string
	stub := &stubUserService{
		deleteFn: func(_ context.Context, userID string) error {
			deleted = userID
			return nil
		},
	}
	h := NewUserHandler(stub)

	req := httptest.NewRequest(http.MethodDelete, "/v1/users/oid-001", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("oid-001")

	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if deleted != "oid-001" {
		t.Errorf("expected delete for oid-001, got %q", deleted)
	}
}

func TestUserHandler_Get_NotFound(t *testing.T) {
	e := newTestEcho()
	stub := &stubUserService{
		getFn: func(context.Context, string) (*ports.UserResult, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	h := NewUserHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/v1/users/missing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("missing")

	err := h.Get(c)
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserHandler_List_ParsesQuery(t *testing.T) {
	e := newTestEcho()
	stub := &stubUserService{
		listFn: func(_ context.Context, filter ports.ListUsersFilter) (*ports.ListUsersResult, error) {
			if filter.Role != "Doctor" || filter.Search != "alice" {
				t.Fatalf("unexpected filter: %+v", filter)
			}
			if filter.Active == nil || !*filter.Active {
				t.Fatalf("expected active=true, got %+v", filter.Active)
			}
			if filter.Page != 2 || filter.Limit != 5 {
				t.Fatalf("unexpected paging: %+v", filter)
			}
			return &ports.ListUsersResult{
				Items: []*domain.User{{UserID: "USR-0006", Role: domain.RoleDoctor}},
				Total: 6, Page: 2, Limit: 5, TotalPages: 2,
			}, nil
		},
	}
	h := NewUserHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/v1/users?role=Doctor&search=alice&active=true&page=2&limit=5", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["total"] != float64(6) || resp["total_pages"] != float64(2) {
		t.Errorf("unexpected paging payload: %+v", resp)
	}
}

func TestUserHandler_List_BadActiveParam(t *testing.T) {
	e := newTestEcho()
	stub := &stubUserService{
		listFn: func(context.Context, ports.ListUsersFilter) (*ports.ListUsersResult, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}
	h := NewUserHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/v1/users?active=maybe", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.List(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}
