// Package emailsecurity provides the Email Security investigation tool.
package emailsecurity

import (
	"github.com/giantswarm/mcp-cloudflare-one/internal/tools"
)

// Toolset is the name used with --toolsets.
const Toolset = "email-security"

// ToolSearchMessages searches messages through the Investigate endpoint.
const ToolSearchMessages = "email_security_search_messages"

// Dispositions accepted by the final_disposition filter.
var Dispositions = []string{"MALICIOUS", "MALICIOUS-BEC", "SUSPICIOUS", "SPOOF", "BENIGN", "UNKNOWN"}

// MessageActions accepted by the message_action filter.
var MessageActions = []string{"PREVIEW", "QUARANTINE_RELEASED", "MOVED"}

// Endpoints are the Email Security tools.
var Endpoints = []tools.Endpoint{
	{
		Name: ToolSearchMessages,
		Description: "Search Cloudflare Email Security messages. " +
			"Without a time range the API searches the last 30 days",
		Path: "/email-security/investigate",
		Query: []tools.QueryParam{
			{Name: "query", Description: "Space separated search terms matched against subject, sender, hashes and other metadata"},
			{Name: "start", Description: "Start of the search range, ISO 8601 (default 30 days ago)"},
			{Name: "end", Description: "End of the search range, ISO 8601 (default now)"},
			{Name: "action_log", Description: "Include the message action log", Kind: tools.ArgBool},
			{Name: "alert_id", Description: "Filter by alert id"},
			{Name: "detections_only", Description: "Only return messages with detections", Kind: tools.ArgBool},
			{Name: "domain", Description: "Filter by sender domain"},
			{Name: "final_disposition", Description: "Filter by final disposition", Enum: Dispositions},
			{Name: "message_action", Description: "Filter by action taken on the message", Enum: MessageActions},
			{Name: "message_id", Description: "Filter by message id"},
			{Name: "metric", Description: "Metric filter"},
			{Name: "recipient", Description: "Filter by recipient address"},
			{Name: "sender", Description: "Filter by sender address"},
		},
		Paginated: true,
		Schema:    tools.IdentifiedList,
	},
}

// RegisterTools registers the toolset.
func RegisterTools(r *tools.Registry) error {
	return tools.RegisterEndpoints(r, Endpoints)
}
