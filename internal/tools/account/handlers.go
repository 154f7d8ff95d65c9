package accounttools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-cloudflare-one/internal/account"
	"github.com/giantswarm/mcp-cloudflare-one/internal/apigateway"
	"github.com/giantswarm/mcp-cloudflare-one/internal/logging"
	"github.com/giantswarm/mcp-cloudflare-one/internal/mcp/oauth"
	"github.com/giantswarm/mcp-cloudflare-one/internal/principal"
	"github.com/giantswarm/mcp-cloudflare-one/internal/server"
	"github.com/giantswarm/mcp-cloudflare-one/internal/tools"
)

const accountItem = `{
	"type": "object",
	"required": ["id", "name"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"name": {"type": "string"}
	}
}`

var (
	accountSchema  = apigateway.MustCompileSchema("account", accountItem)
	accountsSchema = apigateway.MustCompileSchema("accounts", apigateway.ArrayOf(accountItem))
)

// Account is the subset of an account record the tools report.
type Account struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ActiveAccountResponse reports the active account.
type ActiveAccountResponse struct {
	Selected      bool     `json:"selected"`
	AccountID     string   `json:"account_id,omitempty"`
	Account       *Account `json:"account,omitempty"`
	PrincipalKind string   `json:"principal_kind"`
	Message       string   `json:"message,omitempty"`
}

// handleListAccounts lists accounts visible to the credential. It is not
// tenant-scoped, so it runs without the account guard.
func handleListAccounts(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	cred, ok := oauth.CredentialFromContext(ctx)
	if !ok {
		return tools.ErrorResult(account.ErrNoPrincipal), nil
	}
	pagination, err := tools.ParsePagination(request, apigateway.SizeParamPerPage)
	if err != nil {
		return tools.ErrorResult(err), nil
	}

	env, err := sc.APIClient().CallGlobal(ctx, apigateway.CallSpec{
		Endpoint:   "/accounts",
		Credential: cred,
		Schema:     accountsSchema,
		Query:      map[string]any{"name": tools.OptionalString(request, "name")},
		Pagination: pagination,
	})
	if err != nil {
		return tools.ErrorResult(fmt.Errorf("failed to list accounts: %w", err)), nil
	}
	return tools.RenderEnvelope(sc, env), nil
}

// handleSetActiveAccount records the active account for a user-bound
// principal after checking the credential can read it. Tenant-bound
// principals are fixed to their account and nothing is written.
func handleSetActiveAccount(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	accountID, err := tools.RequiredString(request, accountIDArgumentName)
	if err != nil {
		return tools.ErrorResult(err), nil
	}

	p, ok := principal.FromContext(ctx)
	if !ok {
		return tools.ErrorResult(account.ErrNoPrincipal), nil
	}
	cred, ok := oauth.CredentialFromContext(ctx)
	if !ok {
		return tools.ErrorResult(account.ErrNoPrincipal), nil
	}

	if bound, ok := p.AccountID(); ok {
		if bound != accountID {
			return mcp.NewToolResultError(fmt.Sprintf(
				"This credential is bound to account %s and cannot operate on account %s.", bound, accountID)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf(
			"This credential is bound to account %s; it is always the active account.", bound)), nil
	}

	userID, ok := p.UserID()
	if !ok {
		return tools.ErrorResult(fmt.Errorf("%w: %w", account.ErrNoPrincipal, principal.ErrInvalid)), nil
	}

	env, err := sc.APIClient().Call(ctx, apigateway.CallSpec{
		AccountID:  accountID,
		Credential: cred,
		Schema:     accountSchema,
	})
	switch {
	case apigateway.IsNotFound(err), apigateway.IsUnauthorized(err):
		return mcp.NewToolResultError(fmt.Sprintf(
			"Account %s was not found or is not accessible with this credential. Use accounts_list to see available accounts.", accountID)), nil
	case err != nil:
		return tools.ErrorResult(fmt.Errorf("failed to verify account %s: %w", accountID, err)), nil
	}
	acct, err := apigateway.Decode[Account](env)
	if err != nil {
		return tools.ErrorResult(err), nil
	}

	if err := sc.AccountStore().Set(ctx, userID, accountID); err != nil {
		sc.Logger().Warn("Failed to store active account",
			logging.UserHash(userID), logging.AccountID(accountID), logging.Err(err))
		return tools.ErrorResult(fmt.Errorf("%w: %w", account.ErrSessionStateUnavailable, err)), nil
	}
	sc.Logger().Info("Active account set", logging.UserHash(userID), logging.AccountID(accountID))

	return tools.RenderValue(sc, ActiveAccountResponse{
		Selected:      true,
		AccountID:     accountID,
		Account:       &acct,
		PrincipalKind: p.Kind().String(),
	}), nil
}

// handleGetActiveAccount reports the account the guard would resolve.
func handleGetActiveAccount(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	p, ok := principal.FromContext(ctx)
	if !ok {
		return tools.ErrorResult(account.ErrNoPrincipal), nil
	}

	accountID, err := sc.AccountResolver().Resolve(ctx, p)
	switch {
	case errors.Is(err, account.ErrNotSelected):
		return tools.RenderValue(sc, ActiveAccountResponse{
			PrincipalKind: p.Kind().String(),
			Message:       account.NoActiveAccountMessage,
		}), nil
	case errors.Is(err, account.ErrStoreUnavailable):
		return tools.ErrorResult(fmt.Errorf("%w: %w", account.ErrSessionStateUnavailable, err)), nil
	case err != nil:
		return tools.ErrorResult(err), nil
	}

	return tools.RenderValue(sc, ActiveAccountResponse{
		Selected:      true,
		AccountID:     accountID,
		PrincipalKind: p.Kind().String(),
	}), nil
}
