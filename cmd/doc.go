// Package cmd provides the command-line interface for mcp-cloudflare-one.
//
// This package implements a Cobra-based CLI with multiple subcommands:
//   - serve: Starts the MCP server (default behavior when no subcommand is provided)
//   - version: Displays the application version
//   - self-update: Updates the binary to the latest version from GitHub releases
//
// Command Structure:
//
//	mcp-cloudflare-one [flags]                 # Starts the MCP server (default)
//	mcp-cloudflare-one serve [flags]           # Explicitly starts the MCP server
//	mcp-cloudflare-one version                 # Shows version information
//	mcp-cloudflare-one self-update             # Updates to latest release
//	mcp-cloudflare-one help [command]          # Shows help information
//
// The serve command supports multiple transport options:
//   - stdio: Standard input/output (default), one caller with a token from
//     CLOUDFLARE_API_TOKEN
//   - sse: Server-Sent Events over HTTP
//   - streamable-http: Streamable HTTP transport
//
// HTTP transports authenticate every request with the caller's Cloudflare
// API token sent as a bearer credential.
//
// Transport Configuration Examples:
//
//	CLOUDFLARE_API_TOKEN=... mcp-cloudflare-one serve
//	mcp-cloudflare-one serve --transport sse --http-addr :8080 --sse-endpoint /sse
//	mcp-cloudflare-one serve --transport streamable-http --session-store redis --redis-url redis://redis:6379/0
//
// Settings missing from the command line are read from the environment, and
// a .env file in the working directory is loaded first when present.
package cmd
