// Package client talks to the connect API on behalf of a local session.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/gccconnect/connect/internal/core/domain"
)

const defaultTimeout = 5 * time.Second

// TokenSource returns the bearer token to attach, or "" for none.
type TokenSource func() string

// bearerTransport adds the session token to outgoing requests that do not
// already carry an Authorization header.
type bearerTransport struct {
	base  http.RoundTripper
	token TokenSource
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tok := t.token()
	if tok == "" || req.Header.Get("Authorization") != "" {
		return t.base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+tok)
	return t.base.RoundTrip(r)
}

// Verifier checks credentials against a remote connect API.
type Verifier struct {
	baseURL string
	http    *http.Client
}

// NewVerifier builds a Verifier for baseURL. A zero timeout means 5s; token
// may be nil.
func NewVerifier(baseURL string, timeout time.Duration, token TokenSource) *Verifier {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	var rt http.RoundTripper = http.DefaultTransport
	if token != nil {
		rt = &bearerTransport{base: rt, token: token}
	}
	return &Verifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout, Transport: rt},
	}
}

type authEnvelope struct {
	Token string          `json:"token"`
	User  domain.Identity `json:"user"`
}

type errorEnvelope struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// Verify logs in. Attempts that carry a role are sent as registrations.
func (v *Verifier) Verify(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	if creds.IsRegistration() {
		name := creds.Name
		if name == "" {
			name = creds.Email
		}
		return v.Create(ctx, domain.RegistrationDraft{
			Email:    creds.Email,
			Name:     name,
			Role:     creds.Role,
			Password: creds.Password,
		})
	}

	var env authEnvelope
	err := v.do(ctx, http.MethodPost, "/v1/auth/login", map[string]string{
		"email":    creds.Email,
		"password": creds.Password,
	}, &env)
	if err != nil {
		return nil, err
	}
	return &domain.AuthResult{Identity: env.User, Token: env.Token}, nil
}

func (v *Verifier) Create(ctx context.Context, draft domain.RegistrationDraft) (*domain.AuthResult, error) {
	var env authEnvelope
	if err := v.do(ctx, http.MethodPost, "/v1/auth/register", draft, &env); err != nil {
		return nil, err
	}
	return &domain.AuthResult{Identity: env.User, Token: env.Token}, nil
}

// Me fetches the stored identity of the bearer.
func (v *Verifier) Me(ctx context.Context) (*domain.Identity, error) {
	var identity domain.Identity
	if err := v.do(ctx, http.MethodGet, "/v1/me/profile", nil, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

func (v *Verifier) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, v.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := v.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var env errorEnvelope
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&env)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return domain.ErrInvalidCredentials
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusNotFound:
		return domain.ErrUserNotFound
	case http.StatusConflict:
		return domain.ErrUserExists
	case http.StatusTooManyRequests:
		return domain.ErrTooManyAttempts
	case http.StatusUnprocessableEntity:
		if len(env.Fields) > 0 {
			return &domain.ValidationError{Fields: env.Fields}
		}
		return errors.Wrap(domain.ErrValidation, env.Error)
	}
	return errors.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(env.Error))
}
