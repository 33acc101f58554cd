package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gccconnect/connect/internal/api/metrics"
	"github.com/gccconnect/connect/internal/core/domain"
	"github.com/gccconnect/connect/internal/core/ports"
)

// AdminHandler exposes the approval workflow. Routes are guarded by RBAC(ADMIN).
type AdminHandler struct {
	service ports.AdminService
}

func NewAdminHandler(service ports.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// ListUsers handles GET /v1/admin/users.
//
// @Summary      List identities
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        role    query     string  false  "ADMIN, GCC or STARTUP"
// @Param        status  query     string  false  "PENDING, APPROVED or REJECTED"
// @Success      200     {object}  identityListResponse
// @Failure      403     {object}  errorResponse
// @Failure      422     {object}  errorResponse
// @Router       /v1/admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	filter := domain.IdentityFilter{
		Role:   domain.Role(c.QueryParam("role")),
		Status: domain.ApprovalStatus(c.QueryParam("status")),
	}
	fields := map[string]string{}
	if filter.Role != "" && !filter.Role.Valid() {
		fields["role"] = "role must be one of: ADMIN GCC STARTUP"
	}
	switch filter.Status {
	case "", domain.ApprovalPending, domain.ApprovalApproved, domain.ApprovalRejected:
	default:
		fields["status"] = "status must be one of: PENDING APPROVED REJECTED"
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}

	items, err := h.service.ListIdentities(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, identityListResponse{Items: items, Total: len(items)})
}

// ListApprovals handles GET /v1/admin/approvals.
//
// @Summary      List identities awaiting approval
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  identityListResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/admin/approvals [get]
func (h *AdminHandler) ListApprovals(c echo.Context) error {
	items, err := h.service.ListPending(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, identityListResponse{Items: items, Total: len(items)})
}

// Approve handles POST /v1/admin/users/:id/approve.
//
// @Summary      Approve an identity
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Identity id"
// @Success      200  {object}  domain.Identity
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/admin/users/{id}/approve [post]
func (h *AdminHandler) Approve(c echo.Context) error {
	return h.decide(c, h.service.Approve)
}

// Reject handles POST /v1/admin/users/:id/reject.
//
// @Summary      Reject an identity
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Identity id"
// @Success      200  {object}  domain.Identity
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/admin/users/{id}/reject [post]
func (h *AdminHandler) Reject(c echo.Context) error {
	return h.decide(c, h.service.Reject)
}

type decision func(ctx context.Context, actor domain.Identity, id string) (*domain.Identity, error)

func (h *AdminHandler) decide(c echo.Context, fn decision) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	updated, err := fn(c.Request().Context(), claims.Identity(), c.Param("id"))
	if err != nil {
		return err
	}
	metrics.ApprovalTransitionsTotal.WithLabelValues(string(updated.ApprovalStatus)).Inc()
	return c.JSON(http.StatusOK, updated)
}

// Stats handles GET /v1/admin/stats.
//
// @Summary      Dashboard counters
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Stats
// @Failure      403  {object}  errorResponse
// @Router       /v1/admin/stats [get]
func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
