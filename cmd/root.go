package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the mcp-cloudflare-one application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "mcp-cloudflare-one",
	Short: "MCP server for Cloudflare One",
	Long: `mcp-cloudflare-one is a Model Context Protocol (MCP) server that provides
tools for Cloudflare One (Zero Trust) accounts: Gateway, tunnels and private
networks, Access, DLP, Email Security and CASB posture findings.

Each caller works on one active account at a time. Tokens bound to a single
account use that account; user tokens pick one with set_active_account.

When run without subcommands, it starts the MCP server (equivalent to 'mcp-cloudflare-one serve').`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mcp-cloudflare-one version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		// Cobra itself usually prints the error.
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
	rootCmd.AddCommand(newServeCmd())
}
