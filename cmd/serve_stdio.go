package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/oauth2"

	"github.com/giantswarm/mcp-cloudflare-one/internal/identity"
	"github.com/giantswarm/mcp-cloudflare-one/internal/logging"
	"github.com/giantswarm/mcp-cloudflare-one/internal/mcp/oauth"
	"github.com/giantswarm/mcp-cloudflare-one/internal/principal"
	"github.com/giantswarm/mcp-cloudflare-one/internal/server"
)

// runStdioServer serves one caller over stdin and stdout. The configured
// token is verified once at start-up and its identity is attached to every
// request.
func runStdioServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, config ServeConfig) error {
	source := oauth.StaticTokenSource(config.APIToken)
	if source == nil {
		return errors.New("stdio transport requires a Cloudflare API token")
	}
	token, err := source.Token()
	if err != nil {
		return fmt.Errorf("failed to load the Cloudflare API token: %w", err)
	}

	id, err := sc.IdentityResolver().Resolve(ctx, token, config.AccountID)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredential) {
			return fmt.Errorf("the Cloudflare API token was rejected: %w", err)
		}
		return fmt.Errorf("failed to verify the Cloudflare API token: %w", err)
	}
	sc.Logger().Info("Stdio caller verified", logging.PrincipalKind(id.Principal.Kind().String()))

	stdio := mcpserver.NewStdioServer(mcpSrv)
	stdio.SetErrorLogger(log.New(os.Stderr, "", log.LstdFlags))
	stdio.SetContextFunc(func(ctx context.Context) context.Context {
		return stdioIdentityContext(ctx, id, token)
	})

	// Don't print to stdout in stdio mode as it interferes with MCP communication
	err = stdio.Listen(ctx, os.Stdin, os.Stdout)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// stdioIdentityContext attaches what the HTTP bearer middleware would attach
// for the same token.
func stdioIdentityContext(ctx context.Context, id identity.Identity, token *oauth2.Token) context.Context {
	ctx = principal.WithPrincipal(ctx, id.Principal)
	ctx = oauth.ContextWithCredential(ctx, token)
	if id.User != nil {
		ctx = oauth.ContextWithUserInfo(ctx, id.User)
	}
	return ctx
}
