package model

// Params is the raw parameter bundle handed to a hook by the hosting
// framework. It stays untyped because validation must distinguish a missing
// field from a field carrying a non-string JSON value.
type Params map[string]any

// String extracts a string parameter. The boolean is false when the key is
// absent, holds a non-string value, or holds an empty string.
func (p Params) String(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// ExecutionContext is supplied by the hosting framework on every hook call.
// It is read-only from the hooks' perspective.
type ExecutionContext struct {
	Secrets map[string]string `json:"secrets"`
	Env     map[string]string `json:"env"`
	Outputs map[string]any    `json:"outputs"`

	// Params carries the original assignment parameters on some framework
	// versions that re-invoke the error hook with a bare error bundle.
	Params Params `json:"params,omitempty"`
}

// SecretOktaAPIToken is the framework secret holding the Okta API token.
const SecretOktaAPIToken = "OKTA_API_TOKEN"

// Secret returns the named secret, or empty string when absent.
func (c *ExecutionContext) Secret(name string) string {
	if c == nil || c.Secrets == nil {
		return ""
	}
	return c.Secrets[name]
}

// Param resolves an assignment parameter for the error hook: the framework
// passes the originals either on the hook params or on the context, depending
// on the call site, so both shapes are accepted (params first).
func (c *ExecutionContext) Param(params Params, key string) (string, bool) {
	if v, ok := params.String(key); ok {
		return v, true
	}
	if c == nil {
		return "", false
	}
	return c.Params.String(key)
}
