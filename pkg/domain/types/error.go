package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// Error tags for categorization. The hosting framework decides retry policy
// from these categories, so every error thrown by a hook carries exactly one.
var (
	// ErrTagValidation marks a missing or malformed input parameter. Never retried.
	ErrTagValidation = goerr.NewTag("validation")

	// ErrTagConfiguration marks a missing required secret. Fatal for the invocation.
	ErrTagConfiguration = goerr.NewTag("configuration")

	// ErrTagProvider marks a non-2xx response from Okta. Carries the HTTP status
	// code under StatusCodeKey.
	ErrTagProvider = goerr.NewTag("provider")

	// ErrTagTransport marks a network-level failure before any response arrived.
	ErrTagTransport = goerr.NewTag("transport")
)

// StatusCodeKey is the goerr value key under which provider errors carry the
// HTTP status code of the Okta response.
const StatusCodeKey = "statusCode"

// StatusCode extracts the HTTP status code attached to a provider error.
// Returns 0 when the error carries none.
func StatusCode(err error) int {
	if v, ok := goerr.Values(err)[StatusCodeKey]; ok {
		if code, ok := v.(int); ok {
			return code
		}
	}
	return 0
}
