package domain

import "time"

// ApprovalEvent records an admin decision on an identity.
type ApprovalEvent struct {
	IdentityID string         `json:"identityId"`
	Status     ApprovalStatus `json:"approvalStatus"`
	ActorID    string         `json:"actorId"`
	At         time.Time      `json:"at"`
}
