package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/gccconnect/connect/internal/api/middleware"
	"github.com/gccconnect/connect/internal/core/domain"
	"github.com/gccconnect/connect/internal/core/service"
)

type stubProfileService struct {
	getFn    func(ctx context.Context, id string) (*domain.Identity, error)
	updateFn func(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.Identity, error)
}

func (s *stubProfileService) Get(ctx context.Context, id string) (*domain.Identity, error) {
	return s.getFn(ctx, id)
}

func (s *stubProfileService) Update(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.Identity, error) {
	return s.updateFn(ctx, id, update)
}

func withClaims(c echo.Context, id string, role domain.Role, status domain.ApprovalStatus) {
	c.Set(middleware.ClaimsKey, &service.Claims{
		Email:            id + "@example.com",
		Role:             role,
		ApprovalStatus:   status,
		RegisteredClaims: jwt.RegisteredClaims{Subject: id},
	})
}

func TestProfileHandler_Me(t *testing.T) {
	e := newTestEcho()
	h := NewProfileHandler(&stubProfileService{})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/me", nil), rec)
	withClaims(c, "4", domain.RoleGCC, domain.ApprovalPending)

	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp meResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.User.ID != "4" || resp.State != domain.StateAuthenticatedPending || resp.Approved {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestProfileHandler_Me_WithoutClaims(t *testing.T) {
	e := newTestEcho()
	h := NewProfileHandler(&stubProfileService{})

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/me", nil), httptest.NewRecorder())
	err := h.Me(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestProfileHandler_Get(t *testing.T) {
	e := newTestEcho()
	stub := &stubProfileService{
		getFn: func(_ context.Context, id string) (*domain.Identity, error) {
			if id != "2" {
				t.Fatalf("expected caller id, got %s", id)
			}
			return &domain.Identity{ID: id, Name: "GCC User", Role: domain.RoleGCC}, nil
		},
	}
	h := NewProfileHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/me/profile", nil), rec)
	withClaims(c, "2", domain.RoleGCC, domain.ApprovalApproved)

	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestProfileHandler_Update(t *testing.T) {
	e := newTestEcho()
	stub := &stubProfileService{
		updateFn: func(_ context.Context, id string, update domain.ProfileUpdate) (*domain.Identity, error) {
			if update.Name == nil || *update.Name != "Renamed" || update.Email != nil {
				t.Fatalf("unexpected update: %+v", update)
			}
			return &domain.Identity{ID: id, Name: *update.Name}, nil
		},
	}
	h := NewProfileHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPatch, "/v1/me/profile", `{"name":"Renamed"}`), rec)
	withClaims(c, "3", domain.RoleStartup, domain.ApprovalApproved)

	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp domain.Identity
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Name != "Renamed" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestProfileHandler_Update_InvalidEmail(t *testing.T) {
	e := newTestEcho()
	h := NewProfileHandler(&stubProfileService{})

	c := e.NewContext(jsonRequest(http.MethodPatch, "/v1/me/profile", `{"email":"nope"}`), httptest.NewRecorder())
	withClaims(c, "3", domain.RoleStartup, domain.ApprovalApproved)

	var ve *domain.ValidationError
	if err := h.Update(c); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := ve.Fields["email"]; !ok {
		t.Fatalf("expected email field error, got %+v", ve.Fields)
	}
}
