// Package middleware provides the HTTP middleware in front of the MCP
// transports: security headers, CORS, request size limits, request metrics
// and bearer credential authentication.
package middleware
