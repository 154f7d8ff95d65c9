package tools

import "github.com/giantswarm/mcp-cloudflare-one/internal/apigateway"

// Result schemas shared by catalog endpoints. They check the shape the tool
// description promises, leaving field-level detail to the API.
var (
	// ObjectResult is a single resource.
	ObjectResult = apigateway.MustCompileSchema("object_result", `{"type": "object"}`)

	// ListResult is a list of resources. Some list endpoints answer null
	// when nothing exists.
	ListResult = apigateway.MustCompileSchema("list_result",
		`{"type": ["array", "null"], "items": {"type": "object"}}`)

	// IdentifiedList is a list of resources that each carry an id.
	IdentifiedList = apigateway.MustCompileSchema("identified_list",
		`{"type": ["array", "null"], "items": {"type": "object", "required": ["id"]}}`)

	// IdentifiedObject is a single resource with an id.
	IdentifiedObject = apigateway.MustCompileSchema("identified_object",
		`{"type": "object", "required": ["id"]}`)
)
