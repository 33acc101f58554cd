package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gccconnect/connect/internal/api/metrics"
	"github.com/gccconnect/connect/internal/core/domain"
	"github.com/gccconnect/connect/internal/core/policy"
)

// NavigationHandler answers "may this session open that route" for clients
// that do not embed the route table.
type NavigationHandler struct {
	table *policy.Table
	log   zerolog.Logger
}

func NewNavigationHandler(table *policy.Table, log zerolog.Logger) *NavigationHandler {
	return &NavigationHandler{table: table, log: log}
}

// Check evaluates ?path= for the bearer of the optional token.
//
// @Summary      Evaluate route guards
// @Tags         navigation
// @Produce      json
// @Param        path  query     string  true  "Client route, e.g. /admin/dashboard"
// @Success      200   {object}  navigationResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/navigation [get]
func (h *NavigationHandler) Check(c echo.Context) error {
	path := c.QueryParam("path")
	if path == "" {
		return &domain.ValidationError{Fields: map[string]string{"path": "path is required"}}
	}

	route := policy.Normalize(domain.Route(path))
	snap := ctxSnapshot(c)

	pattern, _, ok := h.table.Lookup(route)
	if !ok {
		pattern = "unknown"
	}
	d := h.table.Evaluate(snap, route)
	landed, _, _ := h.table.Resolve(snap, route)

	label := "allow"
	if !d.Allow {
		label = "redirect"
	}
	metrics.NavigationDecisionsTotal.WithLabelValues(pattern, label).Inc()

	h.log.Debug().
		Str("route", string(route)).
		Str("state", string(snap.State())).
		Bool("allow", d.Allow).
		Str("landed", string(landed)).
		Msg("navigation evaluated")

	return c.JSON(http.StatusOK, navigationResponse{
		Path:     route,
		Allow:    d.Allow,
		Redirect: d.Redirect,
		Landed:   landed,
		State:    snap.State(),
	})
}
