package catalog

import (
	"strings"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-cloudflare-one/internal/server"
	"github.com/giantswarm/mcp-cloudflare-one/internal/tools"
	"github.com/giantswarm/mcp-cloudflare-one/internal/tools/testdata"
)

func newRegistry(t *testing.T, toolsets []string) *tools.Registry {
	t.Helper()
	sc := testdata.NewServerContext(t, testdata.NewUpstream(t), server.WithToolsets(toolsets))
	return tools.NewRegistry(mcpserver.NewMCPServer("test", "0.0.0"), sc)
}

func TestToolsets(t *testing.T) {
	assert.Equal(t, []string{"access", "casb", "dlp", "email-security", "gateway"}, Toolsets())
}

func TestRegister_AllToolsets(t *testing.T) {
	r := newRegistry(t, nil)
	require.NoError(t, Register(r))

	names := r.Names()
	for _, want := range []string{
		"accounts_list", "set_active_account", "get_active_account",
		"access_apps_list", "dlp_profiles_list", "email_security_search_messages",
		"gateway_rules_list", "tunnels_list", "posture_findings_search",
	} {
		assert.Contains(t, names, want)
	}
}

func TestRegister_SelectedToolsets(t *testing.T) {
	r := newRegistry(t, []string{"dlp"})
	require.NoError(t, Register(r))

	for _, name := range r.Names() {
		isAccountTool := name == "accounts_list" || strings.HasSuffix(name, "_active_account")
		assert.True(t, isAccountTool || strings.HasPrefix(name, "dlp_"), name)
	}
	assert.Contains(t, r.Names(), "set_active_account")
}

func TestRegister_UnknownToolset(t *testing.T) {
	r := newRegistry(t, []string{"dlp", "workers"})
	err := Register(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown toolsets workers")
	assert.Empty(t, r.Names())
}

func TestToolNamesAreUnique(t *testing.T) {
	// Register fails on duplicates, so a clean run over every toolset proves
	// no two packages claim the same name.
	r := newRegistry(t, Toolsets())
	require.NoError(t, Register(r))
	for _, name := range r.Names() {
		assert.Regexp(t, `^[a-z][a-z0-9_]*$`, name)
	}
}

func TestValidateToolsets(t *testing.T) {
	assert.NoError(t, ValidateToolsets(nil))
	assert.NoError(t, ValidateToolsets([]string{All}))
	assert.NoError(t, ValidateToolsets([]string{"gateway", "casb"}))
	assert.Error(t, ValidateToolsets([]string{"zero-trust"}))
}
