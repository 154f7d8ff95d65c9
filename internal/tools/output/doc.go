// Package output renders Cloudflare API results as MCP tool responses.
//
// Cloudflare One configuration responses can be large (Gateway rule sets,
// DLP profiles, Access application lists) and occasionally carry secret
// material such as service token client secrets or tunnel secrets. This
// package keeps tool output usable and safe:
//
// Secret Masking: values under known secret field names are replaced with
// "***REDACTED***" at any depth before anything is returned to the agent.
//
// Response Truncation: list results that would exceed the configured byte
// budget are cut to a prefix that fits, with a warning naming the shown and
// total counts and the pagination arguments to use instead.
//
// # Usage Example
//
//	processor := output.NewProcessor(output.DefaultConfig())
//	text, err := processor.RenderEnvelope(env)
package output
