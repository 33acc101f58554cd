package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/gccconnect/connect/internal/core/domain"
)

func newTestVerifier(repo *stubIdentityRepo, opts VerifierOptions) *CredentialVerifier {
	return NewCredentialVerifier(repo, NewTokenIssuer("secret", time.Hour), opts, zerolog.Nop())
}

func TestVerify_KnownEmailAnyPassword(t *testing.T) {
	v := newTestVerifier(newStubIdentityRepo(seedIdentities()...), VerifierOptions{})

	for _, seed := range seedIdentities() {
		for _, pw := range []string{"password", "x", "something else entirely"} {
			res, err := v.Verify(context.Background(), domain.Credentials{Email: seed.Email, Password: pw})
			if err != nil {
				t.Fatalf("%s/%s: unexpected error %v", seed.Email, pw, err)
			}
			if !res.Identity.Equal(seed) {
				t.Fatalf("%s: expected %+v, got %+v", seed.Email, seed, res.Identity)
			}
			if res.Token == "" {
				t.Fatalf("%s: expected token", seed.Email)
			}
		}
	}
}

func TestVerify_UnknownEmailFails(t *testing.T) {
	v := newTestVerifier(newStubIdentityRepo(seedIdentities()...), VerifierOptions{})

	for _, email := range []string{"nobody@example.com", "ADMIN@example.com", "admin@example.org"} {
		_, err := v.Verify(context.Background(), domain.Credentials{Email: email, Password: "password"})
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("%s: expected ErrInvalidCredentials, got %v", email, err)
		}
	}
}

func TestVerify_EmptyInput(t *testing.T) {
	v := newTestVerifier(newStubIdentityRepo(seedIdentities()...), VerifierOptions{})

	if _, err := v.Verify(context.Background(), domain.Credentials{Email: "admin@example.com"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for empty password, got %v", err)
	}
	if _, err := v.Verify(context.Background(), domain.Credentials{Password: "x"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for empty email, got %v", err)
	}
}

func TestVerify_UnknownEmailWithRoleRegisters(t *testing.T) {
	repo := newStubIdentityRepo(seedIdentities()...)
	v := newTestVerifier(repo, VerifierOptions{})

	res, err := v.Verify(context.Background(), domain.Credentials{
		Email:    "new@example.com",
		Password: "pw",
		Role:     domain.RoleGCC,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Identity.ApprovalStatus != domain.ApprovalPending {
		t.Fatalf("expected pending, got %s", res.Identity.ApprovalStatus)
	}
	if res.Identity.Name != "new@example.com" {
		t.Fatalf("expected name to default to email, got %q", res.Identity.Name)
	}
	if _, err := repo.FindByEmail(context.Background(), "new@example.com"); err != nil {
		t.Fatalf("expected identity to be stored: %v", err)
	}
}

func TestVerify_StrictPasswords(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	seed := seedIdentities()
	seed[1].PasswordHash = string(hash)
	v := newTestVerifier(newStubIdentityRepo(seed...), VerifierOptions{VerifyPasswords: true})

	res, err := v.Verify(context.Background(), domain.Credentials{Email: "gcc@example.com", Password: "right"})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if res.Identity.PasswordHash != "" {
		t.Fatal("password hash must not leave the verifier")
	}

	if _, err := v.Verify(context.Background(), domain.Credentials{Email: "gcc@example.com", Password: "wrong"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := v.Verify(context.Background(), domain.Credentials{Email: "admin@example.com", Password: "right"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for identity without hash, got %v", err)
	}
}

func TestCreate_PendingWithUniqueIDs(t *testing.T) {
	repo := newStubIdentityRepo(seedIdentities()...)
	v := newTestVerifier(repo, VerifierOptions{})

	seen := map[string]bool{}
	for _, draft := range []domain.RegistrationDraft{
		{Email: "a@example.com", Name: "A", Role: domain.RoleGCC, Password: "pw"},
		{Email: "b@example.com", Name: "B", Role: domain.RoleStartup, Password: "pw"},
		{Email: "c@example.com", Name: "C", Role: domain.RoleStartup, Password: "pw"},
	} {
		res, err := v.Create(context.Background(), draft)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", draft.Email, err)
		}
		if res.Identity.ApprovalStatus != domain.ApprovalPending {
			t.Fatalf("%s: expected pending, got %s", draft.Email, res.Identity.ApprovalStatus)
		}
		if res.Identity.ID == "" || seen[res.Identity.ID] {
			t.Fatalf("%s: expected fresh id, got %q", draft.Email, res.Identity.ID)
		}
		seen[res.Identity.ID] = true

		stored, _ := repo.FindByID(context.Background(), res.Identity.ID)
		if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pw")) != nil {
			t.Fatalf("%s: stored hash does not match password", draft.Email)
		}
	}
}

func TestCreate_RejectsAdminAndDuplicates(t *testing.T) {
	v := newTestVerifier(newStubIdentityRepo(seedIdentities()...), VerifierOptions{})

	_, err := v.Create(context.Background(), domain.RegistrationDraft{Email: "x@example.com", Name: "X", Role: domain.RoleAdmin, Password: "pw"})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Fields["role"] == "" {
		t.Fatalf("expected role validation error, got %v", err)
	}

	_, err = v.Create(context.Background(), domain.RegistrationDraft{Email: "gcc@example.com", Name: "Dup", Role: domain.RoleGCC, Password: "pw"})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	identity := seedIdentities()[3]

	token, err := issuer.Issue(identity)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := claims.Identity(); got.ID != identity.ID || got.Role != identity.Role || got.ApprovalStatus != identity.ApprovalStatus {
		t.Fatalf("unexpected claims identity: %+v", got)
	}

	if _, err := NewTokenIssuer("other", time.Hour).Parse(token); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong secret, got %v", err)
	}
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := issuer.Issue(seedIdentities()[0])
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := NewTokenIssuer("secret", time.Minute).Parse(token); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected expired token to fail, got %v", err)
	}
}
