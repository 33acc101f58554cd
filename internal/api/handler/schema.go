package handler

import "github.com/gccconnect/connect/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email    string      `json:"email"    validate:"required,email"`
	Name     string      `json:"name"     validate:"required,max=120"`
	Role     domain.Role `json:"role"     validate:"required,oneof=GCC STARTUP"`
	Password string      `json:"password" validate:"required"`
}

// authResponse mirrors what a client persists: the token and the identity.
type authResponse struct {
	Token string          `json:"token"`
	User  domain.Identity `json:"user"`
	// Redirect is where the client should navigate next.
	Redirect domain.Route `json:"redirect"`
}

type meResponse struct {
	User     domain.Identity     `json:"user"`
	State    domain.SessionState `json:"state"`
	Approved bool                `json:"approved"`
}

type updateProfileRequest struct {
	Name  *string `json:"name"  validate:"omitnil,min=1,max=120"`
	Email *string `json:"email" validate:"omitnil,email"`
}

type navigationResponse struct {
	Path     domain.Route        `json:"path"`
	Allow    bool                `json:"allow"`
	Redirect domain.Route        `json:"redirect,omitempty"`
	Landed   domain.Route        `json:"landed"`
	State    domain.SessionState `json:"state"`
}

type identityListResponse struct {
	Items []domain.Identity `json:"items"`
	Total int               `json:"total"`
}
