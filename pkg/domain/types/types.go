package types

import (
	"github.com/google/uuid"
)

// UserID represents an Okta user identifier
type UserID string

// String returns the string representation
func (id UserID) String() string {
	return string(id)
}

// GroupID represents an Okta group identifier
type GroupID string

// String returns the string representation
func (id GroupID) String() string {
	return string(id)
}

// OktaDomain represents an Okta organization domain (e.g. "example.okta.com")
type OktaDomain string

// String returns the string representation
func (d OktaDomain) String() string {
	return string(d)
}

// InvocationID represents a hook invocation identifier
type InvocationID string

// String returns the string representation
func (id InvocationID) String() string {
	return string(id)
}

// NewInvocationID creates a new InvocationID
func NewInvocationID() InvocationID {
	return InvocationID(uuid.New().String())
}

// HookName identifies which lifecycle hook was invoked
type HookName string

const (
	HookInvoke HookName = "invoke"
	HookError  HookName = "error"
	HookHalt   HookName = "halt"
)

// String returns the string representation
func (h HookName) String() string {
	return string(h)
}

// InvocationStatus represents the recorded outcome of a hook invocation
type InvocationStatus string

const (
	StatusSucceeded InvocationStatus = "succeeded"
	StatusFailed    InvocationStatus = "failed"
	StatusRecovered InvocationStatus = "recovered"
	StatusHalted    InvocationStatus = "halted"
)

// String returns the string representation
func (s InvocationStatus) String() string {
	return string(s)
}
