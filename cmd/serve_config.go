package cmd

import (
	"errors"
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/giantswarm/mcp-cloudflare-one/internal/accountstore"
	"github.com/giantswarm/mcp-cloudflare-one/internal/tools/catalog"
)

// ServeConfig holds all configuration for the serve command.
type ServeConfig struct {
	// Transport settings
	Transport string
	HTTPAddr  string

	// Endpoint paths
	SSEEndpoint      string
	MessageEndpoint  string
	HTTPEndpoint     string
	DisableStreaming bool

	// Cloudflare API settings
	APIBaseURL         string
	AllowInsecureAPI   bool
	RequestTimeout     time.Duration
	IdentityCacheTTL   time.Duration
	Toolsets           []string
	MaxResponseBytes   int
	ReadOnly           bool
	AllowedOrigins     string
	EnableHSTS         bool
	MetricsAddr        string
	DebugMode          bool
	SessionStoreConfig accountstore.Config

	// Stdio settings. The token and account id identify the single caller.
	APIToken  string
	AccountID string
}

// Validate checks settings that do not need network access.
func (c *ServeConfig) Validate() error {
	switch c.Transport {
	case transportStdio:
		if c.APIToken == "" {
			return errors.New("stdio transport requires a Cloudflare API token (--api-token or CLOUDFLARE_API_TOKEN)")
		}
	case transportSSE, transportStreamableHTTP:
		if c.APIToken != "" {
			log.Printf("Warning: --api-token is ignored by the %s transport; callers send their own tokens", c.Transport)
		}
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, sse, streamable-http)", c.Transport)
	}

	if c.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative, got %v", c.RequestTimeout)
	}
	if c.IdentityCacheTTL < 0 {
		return fmt.Errorf("identity cache TTL must not be negative, got %v", c.IdentityCacheTTL)
	}
	if err := validateSecureURL(c.APIBaseURL, "Cloudflare API base URL", c.AllowInsecureAPI); err != nil {
		return err
	}
	if err := catalog.ValidateToolsets(c.Toolsets); err != nil {
		return err
	}
	return c.SessionStoreConfig.Validate()
}

// loadEnvIfEmpty loads an environment variable into a string pointer if it's empty.
func loadEnvIfEmpty(target *string, envKey string) {
	if *target == "" {
		*target = os.Getenv(envKey)
	}
}

// parseDurationEnv parses a duration from an environment variable value.
// Returns the parsed duration and true if successful, or zero and false if parsing fails.
// Logs a warning if the value is present but invalid.
func parseDurationEnv(value, envName string) (time.Duration, bool) {
	if value == "" {
		return 0, false
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Warning: invalid duration for %s=%q: %v", envName, value, err)
		return 0, false
	}
	return d, true
}

// parseIntEnv parses an integer from an environment variable value.
func parseIntEnv(value, envName string) (int, bool) {
	if value == "" {
		return 0, false
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid integer for %s=%q: %v", envName, value, err)
		return 0, false
	}
	return n, true
}

// splitList splits a comma separated value, dropping blanks.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// validateSecureURL validates that a URL uses HTTPS and is not vulnerable to SSRF attacks.
// It checks for:
// - Valid URL format
// - HTTPS scheme (HTTP only with allowInsecure)
// - No private/local IP addresses or localhost (unless allowInsecure is true)
func validateSecureURL(urlStr string, fieldName string, allowInsecure bool) error {
	if urlStr == "" {
		return fmt.Errorf("%s must be a valid URL: empty URL provided", fieldName)
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("%s must be a valid URL: %w", fieldName, err)
	}

	switch parsedURL.Scheme {
	case "https":
	case "http":
		if !allowInsecure {
			return fmt.Errorf("%s must use HTTPS (got: %s)", fieldName, parsedURL.Scheme)
		}
	case "":
		return fmt.Errorf("%s must be a valid URL with HTTPS scheme", fieldName)
	default:
		return fmt.Errorf("%s must use HTTPS (got: %s)", fieldName, parsedURL.Scheme)
	}

	hostname := parsedURL.Hostname()
	if hostname == "" {
		return fmt.Errorf("%s must have a valid hostname", fieldName)
	}
	if allowInsecure {
		return nil
	}

	if strings.ToLower(hostname) == "localhost" {
		return fmt.Errorf("%s cannot use localhost", fieldName)
	}

	// Literal addresses are checked without a lookup.
	if ip := net.ParseIP(hostname); ip != nil {
		if isPrivateOrLoopbackIP(ip) {
			return fmt.Errorf("%s resolves to a private or loopback IP address (%s), which could be a security risk", fieldName, ip.String())
		}
		return nil
	}

	ips, err := net.LookupIP(hostname)
	if err != nil {
		// DNS may not be ready at start-up; the first API call will fail loudly.
		log.Printf("[WARN] Could not resolve %s (%s) to validate IP address: %v", fieldName, hostname, err)
		return nil
	}
	for _, ip := range ips {
		if isPrivateOrLoopbackIP(ip) {
			return fmt.Errorf("%s resolves to a private or loopback IP address (%s), which could be a security risk", fieldName, ip.String())
		}
	}
	return nil
}

// isPrivateOrLoopbackIP checks if an IP address is private, loopback, or link-local.
func isPrivateOrLoopbackIP(ip net.IP) bool {
	if ip.IsLoopback() {
		return true
	}
	if ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return true
	}
	// 10.0.0.0/8, 172.16.0.0/12, 192.168.0.0/16 and fc00::/7
	return ip.IsPrivate()
}
