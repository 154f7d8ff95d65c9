package instrumentation

import (
	"regexp"
	"strings"
)

// Cardinality management helpers for metrics. Account ids, rule ids and IPs
// in upstream paths would create a time series per resource, so they are
// collapsed to placeholders before being used as label values.

var (
	uuidSegment    = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	hexIDSegment   = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)
	numericSegment = regexp.MustCompile(`^[0-9]+$`)
	ipSegment      = regexp.MustCompile(`^[0-9a-fA-F:.]+(%2F[0-9]+)?$`)
)

// TemplateEndpoint replaces identifier-like path segments with "{id}" and
// address-like segments with "{ip}".
//
// Examples:
//
//	TemplateEndpoint("/accounts/023e105f4ecef8ad9ca31a8372d0c353/gateway/rules")
//	  // "/accounts/{id}/gateway/rules"
//	TemplateEndpoint("/accounts/{id}/teamnet/routes/ip/10.0.0.1")
//	  // "/accounts/{id}/teamnet/routes/ip/{ip}"
func TemplateEndpoint(path string) string {
	if path == "" {
		return "/"
	}

	segments := strings.Split(path, "/")
	for i, seg := range segments {
		switch {
		case seg == "":
		case uuidSegment.MatchString(seg), hexIDSegment.MatchString(seg), numericSegment.MatchString(seg):
			segments[i] = "{id}"
		case strings.ContainsAny(seg, ".:") && ipSegment.MatchString(seg):
			segments[i] = "{ip}"
		}
	}
	return strings.Join(segments, "/")
}

// StatusClass maps an HTTP status code to "2xx", "4xx" and so on. Zero
// (no response) maps to "none".
func StatusClass(code int) string {
	switch {
	case code <= 0:
		return "none"
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

// ExtractUserDomain extracts the domain part from an email address.
//
//	ExtractUserDomain("jane@example.com")  // "example.com"
//	ExtractUserDomain("invalid")           // "unknown"
func ExtractUserDomain(email string) string {
	if email == "" {
		return "unknown"
	}

	parts := strings.Split(email, "@")
	if len(parts) == 2 && parts[1] != "" {
		return parts[1]
	}

	return "unknown"
}
