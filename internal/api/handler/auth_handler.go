package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gccconnect/connect/internal/api/metrics"
	"github.com/gccconnect/connect/internal/core/domain"
	"github.com/gccconnect/connect/internal/core/ports"
)

type AuthHandler struct {
	verifier ports.CredentialVerifier
	limiter  ports.AttemptLimiter
	log      zerolog.Logger
}

// NewAuthHandler wires the verifier. limiter may be nil to disable throttling.
func NewAuthHandler(verifier ports.CredentialVerifier, limiter ports.AttemptLimiter, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{verifier: verifier, limiter: limiter, log: log}
}

// Login authenticates an identity and returns a bearer token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	key := strings.ToLower(strings.TrimSpace(req.Email))
	if h.limiter != nil {
		ok, err := h.limiter.Allow(ctx, key)
		if err != nil {
			h.log.Warn().Err(err).Msg("attempt limiter unavailable, allowing login")
		} else if !ok {
			metrics.LoginAttemptsTotal.WithLabelValues("rate_limited").Inc()
			return domain.ErrTooManyAttempts
		}
	}

	res, err := h.verifier.Verify(ctx, domain.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		} else {
			metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	if h.limiter != nil {
		if err := h.limiter.Reset(ctx, key); err != nil {
			h.log.Warn().Err(err).Msg("reset login attempts")
		}
	}
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()

	return c.JSON(http.StatusOK, authResponse{
		Token:    res.Token,
		User:     res.Identity,
		Redirect: landingRoute(res.Identity),
	})
}

// Register creates a pending GCC or startup identity and signs it in.
//
// @Summary      Register a new identity
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  authResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.verifier.Create(c.Request().Context(), domain.RegistrationDraft{
		Email:    req.Email,
		Name:     req.Name,
		Role:     req.Role,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	metrics.RegistrationsTotal.WithLabelValues(string(res.Identity.Role)).Inc()

	return c.JSON(http.StatusCreated, authResponse{
		Token:    res.Token,
		User:     res.Identity,
		Redirect: domain.RoutePendingApproval,
	})
}

// Logout is stateless: tokens are not revoked, the client drops its session.
//
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /v1/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

func landingRoute(identity domain.Identity) domain.Route {
	if !identity.Approved() {
		return domain.RoutePendingApproval
	}
	return domain.DashboardFor(identity.Role)
}
