// Package catalog assembles the full tool set of the server: the account
// tools, always present, and the toolsets enabled in the configuration.
package catalog

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/giantswarm/mcp-cloudflare-one/internal/tools"
	"github.com/giantswarm/mcp-cloudflare-one/internal/tools/access"
	accounttools "github.com/giantswarm/mcp-cloudflare-one/internal/tools/account"
	"github.com/giantswarm/mcp-cloudflare-one/internal/tools/dlp"
	"github.com/giantswarm/mcp-cloudflare-one/internal/tools/emailsecurity"
	"github.com/giantswarm/mcp-cloudflare-one/internal/tools/gateway"
	"github.com/giantswarm/mcp-cloudflare-one/internal/tools/posture"
)

var toolsets = map[string]func(*tools.Registry) error{
	access.Toolset:        access.RegisterTools,
	dlp.Toolset:           dlp.RegisterTools,
	emailsecurity.Toolset: emailsecurity.RegisterTools,
	gateway.Toolset:       gateway.RegisterTools,
	posture.Toolset:       posture.RegisterTools,
}

// Toolsets returns the selectable toolset names, sorted.
func Toolsets() []string {
	names := make([]string, 0, len(toolsets))
	for name := range toolsets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All selects every toolset.
const All = "all"

// ValidateToolsets rejects unknown names.
func ValidateToolsets(names []string) error {
	var unknown []string
	for _, name := range names {
		if _, ok := toolsets[name]; !ok && name != All {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("unknown toolsets %s (available: %s)",
			strings.Join(unknown, ", "), strings.Join(Toolsets(), ", "))
	}
	return nil
}

// Register adds the account tools and every enabled toolset to r.
func Register(r *tools.Registry) error {
	config := r.ServerContext().Config()
	if err := ValidateToolsets(config.Toolsets); err != nil {
		return err
	}

	if err := accounttools.RegisterTools(r); err != nil {
		return fmt.Errorf("failed to register account tools: %w", err)
	}
	for _, name := range Toolsets() {
		if !config.ToolsetEnabled(name) {
			continue
		}
		if err := toolsets[name](r); err != nil {
			return fmt.Errorf("failed to register %s tools: %w", name, err)
		}
	}

	r.ServerContext().Logger().Info("Registered tools", "count", len(r.Names()), "toolsets", enabled(config.Toolsets))
	return nil
}

func enabled(selected []string) []string {
	if len(selected) == 0 || slices.Contains(selected, All) {
		return Toolsets()
	}
	return selected
}
