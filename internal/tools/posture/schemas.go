package posture

import "github.com/giantswarm/mcp-cloudflare-one/internal/apigateway"

// findingDetail is one aggregated posture finding. Fields beyond the
// required sets are tolerated.
const findingDetail = `{
	"type": "object",
	"required": [
		"id", "archived_count", "active_count", "instance_count",
		"latest_affliction_date", "finding", "integration",
		"organization_id", "severity_override", "ignored"
	],
	"properties": {
		"id": {"type": "string"},
		"archived_count": {"type": "number"},
		"active_count": {"type": "number"},
		"instance_count": {"type": "number"},
		"latest_affliction_date": {"type": "string", "format": "date-time"},
		"organization_id": {"type": "number"},
		"ignored": {"type": "boolean"},
		"finding": {
			"type": "object",
			"required": ["id", "name", "category", "description", "vendor", "severity"],
			"properties": {
				"id": {"type": "string"},
				"name": {"type": "string"},
				"severity": {"type": "string"},
				"vendor": {"type": "string"},
				"description": {"type": ["string", "null"]},
				"category": {
					"type": "object",
					"required": ["product", "type", "observation"],
					"properties": {
						"product": {"type": "string"},
						"type": {"type": "string"},
						"observation": {"type": "string"}
					}
				}
			}
		},
		"integration": {
			"type": "object",
			"required": ["id", "organization_id", "upgradable", "status", "last_hydrated"],
			"properties": {
				"id": {"type": "string"},
				"organization_id": {"type": "number"},
				"upgradable": {"type": "boolean"},
				"status": {"type": "string"},
				"last_hydrated": {"type": "string", "format": "date-time"}
			}
		},
		"severity_override": {
			"type": "object",
			"required": ["created_by", "severity"],
			"properties": {
				"created_by": {"type": "string"},
				"severity": {"type": ["string", "null"]}
			}
		}
	}
}`

const dlpContext = `{
	"type": "object",
	"required": [
		"id", "profile_id", "entry_ids",
		"match_context_min_extent", "match_context_max_extent", "match_context_payload",
		"created", "updated", "deleted"
	],
	"properties": {
		"id": {"type": "string", "format": "uuid"},
		"profile_id": {"type": "string", "format": "uuid"},
		"entry_ids": {"type": "array", "items": {"type": "string", "format": "uuid"}},
		"match_context_min_extent": {"type": "null"},
		"match_context_max_extent": {"type": "null"},
		"match_context_payload": {"type": "null"},
		"created": {"type": "string", "format": "date-time"},
		"updated": {"type": "string", "format": "date-time"},
		"deleted": {"type": "null"}
	}
}`

// assetField values are scalars, string lists or lists of linked files.
const assetField = `{
	"type": "object",
	"required": ["name", "value", "link"],
	"properties": {
		"name": {"type": "string"},
		"link": {"type": ["string", "null"]},
		"value": {
			"anyOf": [
				{"type": ["string", "boolean", "number"]},
				{"type": "array", "items": {"type": "string"}},
				{"type": "array", "items": {
					"type": "object",
					"required": ["url", "display_name", "casb_type"],
					"properties": {
						"url": {"type": "string"},
						"display_name": {"type": "string"},
						"casb_type": {"type": "string"}
					}
				}}
			]
		}
	}
}`

// affliction is one instance of a finding on an asset.
const affliction = `{
	"type": "object",
	"required": [
		"id", "affliction_date", "is_archived", "dlp_contexts",
		"supported_gateway_policy_filters", "asset"
	],
	"properties": {
		"id": {"type": "string", "format": "uuid"},
		"affliction_date": {"type": "string", "format": "date-time"},
		"is_archived": {"type": "boolean"},
		"dlp_contexts": {"type": "array", "items": ` + dlpContext + `},
		"supported_gateway_policy_filters": {"type": "array"},
		"asset": {
			"type": "object",
			"required": ["id", "external_id", "name", "link", "fields", "category"],
			"properties": {
				"id": {"type": "string", "format": "uuid"},
				"external_id": {"type": "string"},
				"name": {"type": "string"},
				"link": {"type": ["string", "null"]},
				"fields": {"type": "array", "items": ` + assetField + `},
				"category": {
					"type": "object",
					"required": ["vendor", "service", "type"],
					"properties": {
						"vendor": {"type": "string"},
						"service": {"type": "string"},
						"type": {"type": "string"}
					}
				}
			}
		}
	}
}`

var (
	findingsSchema  = apigateway.MustCompileSchema("posture_findings", apigateway.ArrayOf(findingDetail))
	instancesSchema = apigateway.MustCompileSchema("posture_finding_instances", apigateway.ArrayOf(affliction))
)
