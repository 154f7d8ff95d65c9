package output

const (
	// DefaultMaxResponseBytes is the default limit on rendered response size (256KB).
	DefaultMaxResponseBytes = 256 * 1024

	// AbsoluteMaxResponseBytes is the absolute maximum response size (2MB).
	AbsoluteMaxResponseBytes = 2 * 1024 * 1024

	// minResponseBytes keeps room for the envelope and the warning.
	minResponseBytes = 4 * 1024
)

// Config holds configuration for output processing.
type Config struct {
	// MaxResponseBytes is a hard limit on rendered response size in bytes.
	// Default: 256KB, Absolute max: 2MB
	MaxResponseBytes int `json:"maxResponseBytes" yaml:"maxResponseBytes"`

	// MaskSecrets replaces secret values with "***REDACTED***".
	// Default: true
	MaskSecrets bool `json:"maskSecrets" yaml:"maskSecrets"`

	// ExtraSecretFields adds field names to the built-in secret list.
	ExtraSecretFields []string `json:"extraSecretFields,omitempty" yaml:"extraSecretFields,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxResponseBytes: DefaultMaxResponseBytes,
		MaskSecrets:      true,
	}
}

// Validate returns a copy with out-of-range values replaced or capped.
func (c *Config) Validate() *Config {
	validated := *c

	switch {
	case validated.MaxResponseBytes <= 0:
		validated.MaxResponseBytes = DefaultMaxResponseBytes
	case validated.MaxResponseBytes < minResponseBytes:
		validated.MaxResponseBytes = minResponseBytes
	case validated.MaxResponseBytes > AbsoluteMaxResponseBytes:
		validated.MaxResponseBytes = AbsoluteMaxResponseBytes
	}

	return &validated
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	clone := *c
	if c.ExtraSecretFields != nil {
		clone.ExtraSecretFields = make([]string, len(c.ExtraSecretFields))
		copy(clone.ExtraSecretFields, c.ExtraSecretFields)
	}

	return &clone
}

// TruncationWarning contains information about response truncation.
type TruncationWarning struct {
	// Shown is the number of items returned
	Shown int `json:"shown"`

	// Total is the number of items in the upstream page
	Total int `json:"total"`

	// Message is a human-readable warning message
	Message string `json:"message"`
}
