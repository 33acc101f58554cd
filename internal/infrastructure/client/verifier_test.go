package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gccconnect/connect/internal/core/domain"
)

func TestVerifier_Verify_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/auth/login" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["email"] != "gcc@example.com" || body["password"] != "pw" {
			t.Fatalf("unexpected body: %v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"tok","user":{"id":"2","email":"gcc@example.com","role":"GCC","approvalStatus":"APPROVED"}}`))
	}))
	defer srv.Close()

	v := NewVerifier(srv.URL+"/", time.Second, nil)
	res, err := v.Verify(context.Background(), domain.Credentials{Email: "gcc@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Token != "tok" || res.Identity.Role != domain.RoleGCC || !res.Identity.Approved() {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestVerifier_Verify_WithRoleRegisters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/auth/register" {
			t.Fatalf("expected register, got %s", r.URL.Path)
		}
		var draft domain.RegistrationDraft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if draft.Name != "new@x.com" || draft.Role != domain.RoleStartup {
			t.Fatalf("unexpected draft: %+v", draft)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"token":"tok","user":{"id":"9","role":"STARTUP","approvalStatus":"PENDING"}}`))
	}))
	defer srv.Close()

	v := NewVerifier(srv.URL, 0, nil)
	res, err := v.Verify(context.Background(), domain.Credentials{Email: "new@x.com", Password: "pw", Role: domain.RoleStartup})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Identity.ApprovalStatus != domain.ApprovalPending {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestVerifier_ErrorMapping(t *testing.T) {
	cases := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusUnauthorized, `{"error":"invalid credentials"}`, domain.ErrInvalidCredentials},
		{http.StatusConflict, `{"error":"user already exists"}`, domain.ErrUserExists},
		{http.StatusTooManyRequests, `{"error":"too many login attempts"}`, domain.ErrTooManyAttempts},
		{http.StatusUnprocessableEntity, `{"error":"email is required","fields":{"email":"email is required"}}`, domain.ErrValidation},
	}

	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(tc.body))
		}))

		v := NewVerifier(srv.URL, time.Second, nil)
		_, err := v.Verify(context.Background(), domain.Credentials{Email: "a@b.com", Password: "pw"})
		srv.Close()

		if !errors.Is(err, tc.want) {
			t.Fatalf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
	}
}

func TestVerifier_ValidationFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"name is required","fields":{"name":"name is required"}}`))
	}))
	defer srv.Close()

	_, err := NewVerifier(srv.URL, time.Second, nil).Create(context.Background(), domain.RegistrationDraft{})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Fields["name"] == "" {
		t.Fatalf("expected field errors, got %v", err)
	}
}

func TestVerifier_Me_AttachesBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer session-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"id":"3","name":"Startup User"}`))
	}))
	defer srv.Close()

	v := NewVerifier(srv.URL, time.Second, func() string { return "session-token" })
	identity, err := v.Me(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.ID != "3" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestVerifier_HonoursContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewVerifier(srv.URL, 5*time.Second, nil).Verify(ctx, domain.Credentials{Email: "a@b.com", Password: "pw"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
