// Package gateway provides the Zero Trust Gateway, tunnel and private
// network tools.
package gateway

import (
	"github.com/giantswarm/mcp-cloudflare-one/internal/tools"
)

// Toolset is the name used with --toolsets.
const Toolset = "gateway"

// RegisterTools registers every endpoint of the toolset.
func RegisterTools(r *tools.Registry) error {
	for _, group := range [][]tools.Endpoint{GatewayEndpoints, TunnelEndpoints, NetworkEndpoints} {
		if err := tools.RegisterEndpoints(r, group); err != nil {
			return err
		}
	}
	return nil
}

func idParam(name, what string) []tools.PathParam {
	return []tools.PathParam{{Name: name, Description: "ID of the " + what}}
}

func uuidParam(name, what string) []tools.PathParam {
	return []tools.PathParam{{Name: name, Description: "UUID of the " + what, UUID: true}}
}

// GatewayEndpoints cover Gateway policies and settings.
var GatewayEndpoints = []tools.Endpoint{
	{
		Name:        "gateway_logging_settings_get",
		Description: "Get the Zero Trust Gateway logging settings",
		Path:        "/gateway/logging",
		Schema:      tools.ObjectResult,
	},
	{
		Name:        "gateway_rules_list",
		Description: "List Zero Trust Gateway rules (DNS, HTTP, network and egress policies)",
		Path:        "/gateway/rules",
		Schema:      tools.IdentifiedList,
	},
	{
		Name:        "gateway_rule_get",
		Description: "Get a Zero Trust Gateway rule",
		Path:        "/gateway/rules/{rule_id}",
		PathParams:  uuidParam("rule_id", "Gateway rule"),
		Schema:      tools.IdentifiedObject,
	},
	{
		Name:        "gateway_proxy_endpoints_list",
		Description: "List Zero Trust Gateway proxy endpoints",
		Path:        "/gateway/proxy_endpoints",
		Schema:      tools.IdentifiedList,
	},
	{
		Name:        "gateway_proxy_endpoint_get",
		Description: "Get a Zero Trust Gateway proxy endpoint",
		Path:        "/gateway/proxy_endpoints/{proxy_endpoint_id}",
		PathParams:  idParam("proxy_endpoint_id", "proxy endpoint"),
		Schema:      tools.IdentifiedObject,
	},
	{
		Name:        "gateway_locations_list",
		Description: "List Zero Trust Gateway DNS locations",
		Path:        "/gateway/locations",
		Schema:      tools.IdentifiedList,
	},
	{
		Name:        "gateway_location_get",
		Description: "Get a Zero Trust Gateway DNS location",
		Path:        "/gateway/locations/{location_id}",
		PathParams:  idParam("location_id", "location"),
		Schema:      tools.IdentifiedObject,
	},
	{
		Name:        "gateway_lists_list",
		Description: "List Zero Trust Gateway lists",
		Path:        "/gateway/lists",
		Query: []tools.QueryParam{
			{Name: "type", Description: "Filter by list type", Enum: []string{"SERIAL", "URL", "DOMAIN", "EMAIL", "IP"}},
		},
		Schema: tools.IdentifiedList,
	},
	{
		Name:        "gateway_list_get",
		Description: "Get a Zero Trust Gateway list",
		Path:        "/gateway/lists/{list_id}",
		PathParams:  uuidParam("list_id", "Gateway list"),
		Schema:      tools.IdentifiedObject,
	},
	{
		Name:        "gateway_list_items_list",
		Description: "List the items of a Zero Trust Gateway list",
		Path:        "/gateway/lists/{list_id}/items",
		PathParams:  uuidParam("list_id", "Gateway list"),
		Paginated:   true,
		Schema:      tools.ListResult,
	},
	{
		Name:        "gateway_configuration_get",
		Description: "Get the Zero Trust account configuration for Gateway",
		Path:        "/gateway/configuration",
		Schema:      tools.ObjectResult,
	},
	{
		Name:        "gateway_custom_certificate_get",
		Description: "Get the custom certificate settings of the Zero Trust account",
		Path:        "/gateway/configuration/custom_certificate",
		Schema:      tools.ObjectResult,
	},
	{
		Name:        "gateway_certificates_list",
		Description: "List Zero Trust Gateway certificates",
		Path:        "/gateway/certificates",
		Schema:      tools.IdentifiedList,
	},
	{
		Name:        "gateway_certificate_get",
		Description: "Get a Zero Trust Gateway certificate",
		Path:        "/gateway/certificates/{certificate_id}",
		PathParams:  uuidParam("certificate_id", "certificate"),
		Schema:      tools.IdentifiedObject,
	},
	{
		Name:        "gateway_categories_list",
		Description: "List the content and security categories Gateway policies can match",
		Path:        "/gateway/categories",
		Schema:      tools.IdentifiedList,
	},
	{
		Name:        "gateway_audit_ssh_settings_get",
		Description: "Get the Zero Trust Gateway SSH audit settings",
		Path:        "/gateway/audit_ssh_settings",
		Schema:      tools.ObjectResult,
	},
	{
		Name:        "gateway_app_types_list",
		Description: "List the application types Gateway policies can match",
		Path:        "/gateway/app_types",
		Schema:      tools.IdentifiedList,
	},
}

// TunnelEndpoints cover Cloudflare Tunnel and WARP Connector. Tunnel token
// endpoints are not exposed.
var TunnelEndpoints = []tools.Endpoint{
	{
		Name:        "tunnels_list",
		Description: "List all tunnels in the account, of every type",
		Path:        "/tunnels",
		Query: []tools.QueryParam{
			{Name: "name", Description: "Filter by tunnel name"},
			{Name: "is_deleted", Description: "Include only deleted (true) or only active (false) tunnels", Kind: tools.ArgBool},
			{Name: "status", Description: "Filter by tunnel status", Enum: []string{"inactive", "degraded", "healthy", "down"}},
		},
		Paginated: true,
		Schema:    tools.IdentifiedList,
	},
	{
		Name:        "tunnels_cloudflared_list",
		Description: "List Cloudflare Tunnels (cloudflared)",
		Path:        "/cfd_tunnel",
		Query: []tools.QueryParam{
			{Name: "name", Description: "Filter by tunnel name"},
			{Name: "is_deleted", Description: "Include only deleted (true) or only active (false) tunnels", Kind: tools.ArgBool},
		},
		Paginated: true,
		Schema:    tools.IdentifiedList,
	},
	{
		Name:        "tunnel_cloudflared_get",
		Description: "Get a Cloudflare Tunnel",
		Path:        "/cfd_tunnel/{tunnel_id}",
		PathParams:  uuidParam("tunnel_id", "tunnel"),
		Schema:      tools.IdentifiedObject,
	},
	{
		Name:        "tunnel_cloudflared_configuration_get",
		Description: "Get the remotely managed configuration of a Cloudflare Tunnel",
		Path:        "/cfd_tunnel/{tunnel_id}/configurations",
		PathParams:  uuidParam("tunnel_id", "tunnel"),
		Schema:      tools.ObjectResult,
	},
	{
		Name:        "tunnel_cloudflared_connections_list",
		Description: "List the active connections of a Cloudflare Tunnel",
		Path:        "/cfd_tunnel/{tunnel_id}/connections",
		PathParams:  uuidParam("tunnel_id", "tunnel"),
		Schema:      tools.ListResult,
	},
	{
		Name:        "tunnel_cloudflared_connector_get",
		Description: "Get one connector (cloudflared instance) of a Cloudflare Tunnel",
		Path:        "/cfd_tunnel/{tunnel_id}/connectors/{connector_id}",
		PathParams: []tools.PathParam{
			{Name: "tunnel_id", Description: "UUID of the tunnel", UUID: true},
			{Name: "connector_id", Description: "UUID of the connector", UUID: true},
		},
		Schema: tools.IdentifiedObject,
	},
	{
		Name:        "tunnels_warp_connector_list",
		Description: "List WARP Connector tunnels",
		Path:        "/warp_connector",
		Query: []tools.QueryParam{
			{Name: "name", Description: "Filter by tunnel name"},
			{Name: "is_deleted", Description: "Include only deleted (true) or only active (false) tunnels", Kind: tools.ArgBool},
		},
		Paginated: true,
		Schema:    tools.IdentifiedList,
	},
	{
		Name:        "tunnel_warp_connector_get",
		Description: "Get a WARP Connector tunnel",
		Path:        "/warp_connector/{tunnel_id}",
		PathParams:  uuidParam("tunnel_id", "tunnel"),
		Schema:      tools.IdentifiedObject,
	},
}

// NetworkEndpoints cover private network routes and virtual networks.
var NetworkEndpoints = []tools.Endpoint{
	{
		Name:        "networks_route_by_ip_get",
		Description: "Find the tunnel route that serves a private IP address",
		Path:        "/teamnet/routes/ip/{ip}",
		PathParams:  []tools.PathParam{{Name: "ip", Description: "Private IP address, e.g. 10.1.0.137"}},
		Query: []tools.QueryParam{
			{Name: "virtual_network_id", Description: "Virtual network to search in (default network when omitted)"},
		},
		Schema: tools.ObjectResult,
	},
	{
		Name:        "networks_routes_list",
		Description: "List private network routes served by tunnels",
		Path:        "/teamnet/routes",
		Query: []tools.QueryParam{
			{Name: "tunnel_id", Description: "Filter by tunnel UUID"},
			{Name: "virtual_network_id", Description: "Filter by virtual network UUID"},
			{Name: "network_subset", Description: "Only routes that are a subset of this CIDR"},
			{Name: "network_superset", Description: "Only routes that contain this CIDR"},
			{Name: "is_deleted", Description: "Include only deleted (true) or only active (false) routes", Kind: tools.ArgBool},
		},
		Paginated: true,
		Schema:    tools.IdentifiedList,
	},
	{
		Name:        "networks_route_get",
		Description: "Get a private network route",
		Path:        "/teamnet/routes/{route_id}",
		PathParams:  uuidParam("route_id", "route"),
		Schema:      tools.IdentifiedObject,
	},
	{
		Name:        "networks_subnets_list",
		Description: "List Zero Trust subnets (WARP and Cloudflare source subnets)",
		Path:        "/zerotrust/subnets",
		Query: []tools.QueryParam{
			{Name: "name", Description: "Filter by subnet name"},
			{Name: "subnet_types", Description: "Filter by subnet type", Enum: []string{"cloudflare_source", "warp"}},
		},
		Paginated: true,
		Schema:    tools.IdentifiedList,
	},
	{
		Name:        "networks_virtual_networks_list",
		Description: "List virtual networks",
		Path:        "/teamnet/virtual_networks",
		Query: []tools.QueryParam{
			{Name: "name", Description: "Filter by virtual network name"},
			{Name: "is_default", Description: "Only the default network (true) or only others (false)", Kind: tools.ArgBool},
		},
		Schema: tools.IdentifiedList,
	},
	{
		Name:        "networks_virtual_network_get",
		Description: "Get a virtual network",
		Path:        "/teamnet/virtual_networks/{virtual_network_id}",
		PathParams:  uuidParam("virtual_network_id", "virtual network"),
		Schema:      tools.IdentifiedObject,
	},
}
