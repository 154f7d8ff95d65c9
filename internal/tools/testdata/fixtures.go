// Package testdata provides a fake Cloudflare API and context helpers for
// testing the tool packages.
package testdata

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/oauth2"

	"github.com/giantswarm/mcp-cloudflare-one/internal/accountstore"
	"github.com/giantswarm/mcp-cloudflare-one/internal/apigateway"
	"github.com/giantswarm/mcp-cloudflare-one/internal/mcp/oauth"
	"github.com/giantswarm/mcp-cloudflare-one/internal/principal"
	"github.com/giantswarm/mcp-cloudflare-one/internal/server"
)

// Token is the bearer credential the fake upstream accepts.
const Token = "test-token"

// RecordedRequest is one request seen by the fake upstream.
type RecordedRequest struct {
	Method        string
	Path          string
	Query         url.Values
	Body          []byte
	Authorization string
}

// Upstream is a fake Cloudflare v4 API. Unregistered routes answer 404
// with a v4 error envelope.
type Upstream struct {
	*httptest.Server

	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []RecordedRequest
}

// NewUpstream starts a fake API closed at test cleanup.
func NewUpstream(t *testing.T) *Upstream {
	t.Helper()
	u := &Upstream{routes: make(map[string]http.HandlerFunc)}
	u.Server = httptest.NewServer(http.HandlerFunc(u.serve))
	t.Cleanup(u.Close)
	return u
}

func (u *Upstream) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	u.mu.Lock()
	u.requests = append(u.requests, RecordedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         r.URL.Query(),
		Body:          body,
		Authorization: r.Header.Get("Authorization"),
	})
	h, ok := u.routes[r.Method+" "+r.URL.Path]
	u.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if r.Header.Get("Authorization") != "Bearer "+Token {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(ErrorEnvelope(10000, "Authentication error")))
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(ErrorEnvelope(7003, "Could not route to "+r.URL.Path)))
		return
	}
	h(w, r)
}

// Handle registers a handler for method and path.
func (u *Upstream) Handle(method, path string, h http.HandlerFunc) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.routes[method+" "+path] = h
}

// Respond registers a fixed response.
func (u *Upstream) Respond(method, path string, status int, body string) {
	u.Handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

// OK registers a successful envelope around result.
func (u *Upstream) OK(method, path string, result any, info *apigateway.ResultInfo) {
	u.Respond(method, path, http.StatusOK, SuccessEnvelope(result, info))
}

// Requests returns the requests seen so far.
func (u *Upstream) Requests() []RecordedRequest {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]RecordedRequest(nil), u.requests...)
}

// LastRequest returns the most recent request, or a zero value.
func (u *Upstream) LastRequest() RecordedRequest {
	reqs := u.Requests()
	if len(reqs) == 0 {
		return RecordedRequest{}
	}
	return reqs[len(reqs)-1]
}

// SuccessEnvelope renders a v4 success body.
func SuccessEnvelope(result any, info *apigateway.ResultInfo) string {
	env := map[string]any{
		"success":  true,
		"errors":   []any{},
		"messages": []any{},
		"result":   result,
	}
	if info != nil {
		env["result_info"] = info
	}
	data, err := json.Marshal(env)
	if err != nil {
		panic(err)
	}
	return string(data)
}

// ErrorEnvelope renders a v4 error body.
func ErrorEnvelope(code int, message string) string {
	data, _ := json.Marshal(map[string]any{
		"success":  false,
		"errors":   []map[string]any{{"code": code, "message": message}},
		"messages": []any{},
		"result":   nil,
	})
	return string(data)
}

// NewServerContext returns a server context talking to u with an in-memory
// account store. Extra options are applied last.
func NewServerContext(t *testing.T, u *Upstream, opts ...server.Option) *server.ServerContext {
	t.Helper()
	base := []server.Option{
		server.WithAPIClient(apigateway.New(apigateway.WithBaseURL(u.URL))),
		server.WithAccountStore(accountstore.NewMemory()),
	}
	sc, err := server.NewServerContext(context.Background(), append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewServerContext: %v", err)
	}
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

// UserContext returns a context for a user-bound principal holding Token.
func UserContext(userID string) context.Context {
	ctx := principal.WithPrincipal(context.Background(), principal.UserBound(userID))
	ctx = oauth.ContextWithUserInfo(ctx, &oauth.UserInfo{ID: userID, Email: userID + "@example.com"})
	return oauth.ContextWithCredential(ctx, &oauth2.Token{AccessToken: Token, TokenType: "Bearer"})
}

// TenantContext returns a context for a principal bound to accountID.
func TenantContext(accountID string) context.Context {
	ctx := principal.WithPrincipal(context.Background(), principal.TenantBound(accountID))
	return oauth.ContextWithCredential(ctx, &oauth2.Token{AccessToken: Token, TokenType: "Bearer"})
}

// Request builds a tool call request.
func Request(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

// ResultText returns the first text content of a result.
func ResultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("nil tool result")
	}
	for _, c := range result.Content {
		if text, ok := c.(mcp.TextContent); ok {
			return text.Text
		}
	}
	t.Fatal("tool result has no text content")
	return ""
}

// FillPath substitutes {name} placeholders with escaped argument values,
// the way endpoint tools build request paths.
func FillPath(path string, args map[string]any) string {
	for k, v := range args {
		s, ok := v.(string)
		if !ok {
			continue
		}
		path = strings.ReplaceAll(path, "{"+k+"}", url.PathEscape(s))
	}
	return path
}
