package model

import (
	"time"

	"github.com/secmon-lab/warrant/pkg/domain/types"
)

// InvocationRecord is the audit trail entry for one hook invocation. It
// records the outcome, never the result value itself.
type InvocationRecord struct {
	ID         types.InvocationID     `json:"id" firestore:"id"`
	Hook       types.HookName         `json:"hook" firestore:"hook"`
	UserID     string                 `json:"userId" firestore:"user_id"`
	GroupID    string                 `json:"groupId" firestore:"group_id"`
	OktaDomain string                 `json:"oktaDomain" firestore:"okta_domain"`
	Status     types.InvocationStatus `json:"status" firestore:"status"`
	Error      string                 `json:"error,omitempty" firestore:"error,omitempty"`
	StatusCode int                    `json:"statusCode,omitempty" firestore:"status_code,omitempty"`
	StartedAt  time.Time              `json:"startedAt" firestore:"started_at"`
	FinishedAt time.Time              `json:"finishedAt" firestore:"finished_at"`
}

// NewInvocationRecord creates a record with a fresh ID and StartedAt set to now.
func NewInvocationRecord(hook types.HookName) *InvocationRecord {
	return &InvocationRecord{
		ID:        types.NewInvocationID(),
		Hook:      hook,
		StartedAt: time.Now(),
	}
}

// Finish stamps the outcome onto the record.
func (r *InvocationRecord) Finish(status types.InvocationStatus, err error) {
	r.Status = status
	r.FinishedAt = time.Now()
	if err != nil {
		r.Error = err.Error()
		r.StatusCode = types.StatusCode(err)
	}
}
