package output

import (
	"strings"
)

// RedactedValue is the placeholder used for masked secret data.
const RedactedValue = "***REDACTED***"

// secretFields lists field names whose values are never returned. Service
// token creation returns client_secret, tunnel configuration can include
// tunnel_secret, and identity provider configs carry client secrets.
var secretFields = map[string]bool{
	"secret":         true,
	"client_secret":  true,
	"tunnel_secret":  true,
	"password":       true,
	"private_key":    true,
	"token":          true,
	"api_token":      true,
	"access_token":   true,
	"refresh_token":  true,
	"secret_key":     true,
	"signing_key":    true,
	"credentials":    true,
	"service_key":    true,
	"webhook_secret": true,
}

// secretSuffixes catch provider specific variants such as
// okta_client_secret or scim_bearer_token.
var secretSuffixes = []string{
	"_secret",
	"_password",
	"_private_key",
	"_bearer_token",
}

// IsSecretField reports whether values under key are masked.
func IsSecretField(key string, extra ...string) bool {
	k := strings.ToLower(key)
	if secretFields[k] {
		return true
	}
	for _, s := range secretSuffixes {
		if strings.HasSuffix(k, s) {
			return true
		}
	}
	for _, e := range extra {
		if strings.EqualFold(e, key) {
			return true
		}
	}
	return false
}

// MaskSecrets returns a copy of a decoded JSON value with secret values
// replaced at any depth. Empty and null secrets are left as they are so the
// agent can still tell that no secret is configured.
func MaskSecrets(v any, extra ...string) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if IsSecretField(k, extra...) && !isEmptyValue(val) {
				out[k] = RedactedValue
				continue
			}
			out[k] = MaskSecrets(val, extra...)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = MaskSecrets(val, extra...)
		}
		return out
	default:
		return v
	}
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	}
	return false
}
