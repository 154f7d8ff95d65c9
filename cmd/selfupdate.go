package cmd

import (
	"errors"
	"fmt"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

// githubRepoSlug is the repository whose releases carry the binaries.
const githubRepoSlug = "giantswarm/mcp-cloudflare-one"

// newSelfUpdateCmd creates the Cobra command that replaces the running
// binary with the latest GitHub release.
func newSelfUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "self-update",
		Short: "Update mcp-cloudflare-one to the latest version",
		Long: `Check GitHub releases for a newer version of mcp-cloudflare-one and,
if one exists, replace the current binary with it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			current := rootCmd.Version
			if current == "" || current == "dev" {
				return errors.New("cannot self-update a development version")
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = cmd.Root().Context()
			}

			latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(githubRepoSlug))
			if err != nil {
				return fmt.Errorf("error detecting latest version: %w", err)
			}
			if !found {
				return fmt.Errorf("no release found for %s", githubRepoSlug)
			}
			if latest.LessOrEqual(current) {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Current version %s is the latest\n", current)
				return nil
			}

			exe, err := selfupdate.ExecutablePath()
			if err != nil {
				return fmt.Errorf("could not locate executable path: %w", err)
			}
			if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
				return fmt.Errorf("error updating binary: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully updated to version %s\n", latest.Version())
			return nil
		},
	}
}
