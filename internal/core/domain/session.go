package domain

import "time"

// Session is one authenticated browser context. Identity is a copy taken at
// login time; later changes to the stored identity are not reflected here.
type Session struct {
	Identity  Identity
	Token     string
	CreatedAt time.Time
}

// SessionState is the coarse lifecycle state of the session store.
type SessionState string

const (
	StateAnonymous             SessionState = "anonymous"
	StateAuthenticatedPending  SessionState = "authenticated_pending"
	StateAuthenticatedApproved SessionState = "authenticated_approved"
	StateAuthenticatedRejected SessionState = "authenticated_rejected"
)

// Snapshot is an immutable view of the session store. A nil Session means
// anonymous. Version increases by one on every store write.
type Snapshot struct {
	Session *Session
	Version uint64
}

// AnonymousSnapshot is the snapshot of a store with no session.
func AnonymousSnapshot() Snapshot {
	return Snapshot{}
}

// SnapshotOf builds a snapshot around a copy of sess.
func SnapshotOf(sess Session, version uint64) Snapshot {
	return Snapshot{Session: &sess, Version: version}
}

// Clone returns a snapshot that shares no memory with s.
func (s Snapshot) Clone() Snapshot {
	if s.Session != nil {
		sess := *s.Session
		s.Session = &sess
	}
	return s
}

// LoggedIn reports whether a session is materialized.
func (s Snapshot) LoggedIn() bool {
	return s.Session != nil
}

// Role returns the session role, or false when anonymous.
func (s Snapshot) Role() (Role, bool) {
	if s.Session == nil {
		return "", false
	}
	return s.Session.Identity.Role, true
}

// Approved is false for anonymous snapshots.
func (s Snapshot) Approved() bool {
	return s.Session != nil && s.Session.Identity.Approved()
}

// Token returns the bearer token or "" when anonymous.
func (s Snapshot) Token() string {
	if s.Session == nil {
		return ""
	}
	return s.Session.Token
}

// State derives the lifecycle state from the stored approval status.
func (s Snapshot) State() SessionState {
	if s.Session == nil {
		return StateAnonymous
	}
	switch s.Session.Identity.ApprovalStatus {
	case ApprovalApproved:
		return StateAuthenticatedApproved
	case ApprovalRejected:
		return StateAuthenticatedRejected
	default:
		return StateAuthenticatedPending
	}
}
