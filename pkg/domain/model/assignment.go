package model

import (
	"time"

	"github.com/secmon-lab/warrant/pkg/domain/types"
)

// AssignmentRequest holds the parameters of one group-assignment attempt.
// All fields are required and validated before any network activity.
type AssignmentRequest struct {
	UserID     types.UserID     `json:"userId"`
	GroupID    types.GroupID    `json:"groupId"`
	OktaDomain types.OktaDomain `json:"oktaDomain"`
}

// AssignmentResult is returned from a successful invoke hook. It is produced
// once on success and never persisted; only invocation records are stored.
type AssignmentResult struct {
	UserID     types.UserID     `json:"userId"`
	GroupID    types.GroupID    `json:"groupId"`
	Assigned   bool             `json:"assigned"`
	OktaDomain types.OktaDomain `json:"oktaDomain"`
	AssignedAt time.Time        `json:"assignedAt"`
}

// HaltResult acknowledges a halt hook. The single PUT request is atomic from
// this system's viewpoint, so there is never partial state to unwind and
// CleanupCompleted is always true.
type HaltResult struct {
	UserID           string    `json:"userId"`
	GroupID          string    `json:"groupId"`
	Reason           string    `json:"reason,omitempty"`
	HaltedAt         time.Time `json:"haltedAt"`
	CleanupCompleted bool      `json:"cleanupCompleted"`
}

// RecoveryResult is returned from the error hook when its single retry succeeded.
type RecoveryResult struct {
	Recovered bool `json:"recovered"`
}

// HookError is the serialized form of an error handed back to the error hook
// by the hosting framework.
type HookError struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode,omitempty"`
}
