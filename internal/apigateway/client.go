package apigateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"

	"github.com/giantswarm/mcp-cloudflare-one/internal/instrumentation"
	"github.com/giantswarm/mcp-cloudflare-one/internal/logging"
)

const (
	// DefaultBaseURL is the Cloudflare v4 API root.
	DefaultBaseURL = "https://api.cloudflare.com/client/v4"

	// DefaultTimeout bounds a single request when the caller sets no deadline.
	DefaultTimeout = 30 * time.Second

	// DefaultPageSize is used when a paginated call does not set a size.
	DefaultPageSize = 20

	// MaxPageSize caps caller-provided page sizes.
	MaxPageSize = 100

	// RequestIDHeader carries the per-request correlation id.
	RequestIDHeader = "X-Request-ID"

	maxResponseBytes = 16 << 20
)

// Page size query parameter names.
const (
	SizeParamPerPage  = "per_page"
	SizeParamPageSize = "page_size"
)

// Pagination selects one page. Zero values fall back to page 1 and
// DefaultPageSize; sizes above MaxPageSize are capped.
type Pagination struct {
	Page     int
	PageSize int

	// SizeParam names the size query parameter. Empty means per_page.
	SizeParam string
}

func (p Pagination) apply(q url.Values) {
	page := p.Page
	if page < 1 {
		page = 1
	}
	size := p.PageSize
	switch {
	case size <= 0:
		size = DefaultPageSize
	case size > MaxPageSize:
		size = MaxPageSize
	}
	param := p.SizeParam
	if param == "" {
		param = SizeParamPerPage
	}
	q.Set("page", strconv.Itoa(page))
	q.Set(param, strconv.Itoa(size))
}

// CallSpec describes one API call.
type CallSpec struct {
	Method string

	// Endpoint is relative to /accounts/{AccountID} for Call and to the API
	// root for CallGlobal. It must start with "/".
	Endpoint string

	AccountID  string
	Credential *oauth2.Token

	// Schema validates the envelope's result field. Nil skips result validation.
	Schema *Schema

	// Query holds filters. Empty strings and nil values are omitted; slices
	// are repeated.
	Query map[string]any

	Pagination *Pagination

	// Body is JSON-encoded when non-nil.
	Body any
}

// ResultInfo is the v4 pagination block.
type ResultInfo struct {
	Page       int    `json:"page"`
	PerPage    int    `json:"per_page"`
	Count      int    `json:"count"`
	TotalCount int    `json:"total_count"`
	TotalPages int    `json:"total_pages,omitempty"`
	Cursor     string `json:"cursor,omitempty"`
}

// Envelope is a validated successful response.
type Envelope struct {
	Result     json.RawMessage `json:"result"`
	ResultInfo *ResultInfo     `json:"result_info,omitempty"`
	Messages   []Message       `json:"messages,omitempty"`
}

type rawEnvelope struct {
	Success    bool            `json:"success"`
	Errors     []Message       `json:"errors"`
	Messages   []Message       `json:"messages"`
	Result     json.RawMessage `json:"result"`
	ResultInfo *ResultInfo     `json:"result_info"`
}

// Decode unmarshals the envelope result into T.
func Decode[T any](env *Envelope) (T, error) {
	var v T
	if env == nil || len(env.Result) == 0 {
		return v, errors.New("empty result")
	}
	if err := json.Unmarshal(env.Result, &v); err != nil {
		return v, fmt.Errorf("decode result: %w", err)
	}
	return v, nil
}

// UpstreamRecorder records one metric per call.
type UpstreamRecorder interface {
	RecordUpstreamRequest(ctx context.Context, method, endpoint string, statusCode int, outcome string, duration time.Duration)
}

type noopUpstreamRecorder struct{}

func (noopUpstreamRecorder) RecordUpstreamRequest(context.Context, string, string, int, string, time.Duration) {
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

// WithHTTPClient sets the HTTP client. Its Timeout, if any, is kept.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRecorder sets the upstream metrics recorder.
func WithRecorder(r UpstreamRecorder) Option {
	return func(c *Client) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// Client calls the Cloudflare API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	recorder   UpstreamRecorder
	logger     *slog.Logger
	userAgent  string
}

// New returns a Client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		recorder:   noopUpstreamRecorder{},
		logger:     slog.Default(),
		userAgent:  "mcp-cloudflare-one",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Call performs an account-scoped call.
func (c *Client) Call(ctx context.Context, spec CallSpec) (*Envelope, error) {
	if spec.AccountID == "" {
		return nil, ErrMissingAccountID
	}
	return c.do(ctx, "/accounts/"+url.PathEscape(spec.AccountID)+endpointPath(spec.Endpoint), spec)
}

// CallGlobal performs a call outside any account, such as /accounts or /user.
func (c *Client) CallGlobal(ctx context.Context, spec CallSpec) (*Envelope, error) {
	return c.do(ctx, endpointPath(spec.Endpoint), spec)
}

func endpointPath(endpoint string) string {
	if endpoint == "" || strings.HasPrefix(endpoint, "/") {
		return endpoint
	}
	return "/" + endpoint
}

func (c *Client) do(ctx context.Context, path string, spec CallSpec) (env *Envelope, err error) {
	if spec.Credential == nil || spec.Credential.AccessToken == "" {
		return nil, ErrMissingCredential
	}
	method := spec.Method
	if method == "" {
		method = http.MethodGet
	}
	requestID := uuid.NewString()

	ctx, span := instrumentation.StartUpstreamSpan(ctx, method, path,
		attribute.String(instrumentation.SpanAttrRequestID, requestID))
	defer span.End()

	start := time.Now()
	status := 0
	defer func() {
		outcome := outcomeFor(err)
		c.recorder.RecordUpstreamRequest(ctx, method, instrumentation.TemplateEndpoint(path), status, outcome, time.Since(start))
		if err != nil {
			instrumentation.SetSpanError(span, err)
			c.logger.Debug("Cloudflare API call failed",
				logging.Method(method),
				logging.Endpoint(instrumentation.TemplateEndpoint(path)),
				logging.RequestID(requestID),
				logging.SanitizedErr(err))
		} else {
			instrumentation.SetSpanSuccess(span)
		}
	}()

	apiErr := func(kind Kind, cause error) *Error {
		return &Error{Kind: kind, Method: method, Endpoint: path, Status: status, Err: cause}
	}

	req, err := c.newRequest(ctx, method, path, spec)
	if err != nil {
		return nil, apiErr(KindTransportFailure, err)
	}
	req.Header.Set(RequestIDHeader, requestID)
	spec.Credential.SetAuthHeader(req)

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.httpClient.Do(req.WithContext(callCtx))
	if err != nil {
		return nil, apiErr(KindTransportFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	status = resp.StatusCode
	span.SetAttributes(attribute.Int(instrumentation.SpanAttrStatusCode, status))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apiErr(KindTransportFailure, fmt.Errorf("read body: %w", err))
	}

	doc, decodeErr := jsonschema.UnmarshalJSON(bytes.NewReader(body))

	if status < 200 || status > 299 {
		if decodeErr != nil || errorEnvelopeSchema.Validate(doc) != nil {
			return nil, apiErr(KindTransportFailure, nil)
		}
		var raw rawEnvelope
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, apiErr(KindTransportFailure, err)
		}
		e := apiErr(KindUpstream, nil)
		e.Messages = raw.Errors
		return nil, e
	}

	if decodeErr != nil {
		return nil, apiErr(KindResponseShapeMismatch, fmt.Errorf("body is not JSON: %w", decodeErr))
	}
	if err := envelopeSchema.Validate(doc); err != nil {
		return nil, apiErr(KindResponseShapeMismatch, err)
	}

	var raw rawEnvelope
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apiErr(KindResponseShapeMismatch, err)
	}
	if !raw.Success {
		e := apiErr(KindUpstream, nil)
		e.Messages = raw.Errors
		return nil, e
	}

	if spec.Schema != nil {
		result := any(nil)
		if m, ok := doc.(map[string]any); ok {
			result = m["result"]
		}
		if err := spec.Schema.Validate(result); err != nil {
			return nil, apiErr(KindResponseShapeMismatch, err)
		}
	}

	return &Envelope{Result: raw.Result, ResultInfo: raw.ResultInfo, Messages: raw.Messages}, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, spec CallSpec) (*http.Request, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("build URL: %w", err)
	}

	q := encodeQuery(spec.Query)
	if spec.Pagination != nil {
		spec.Pagination.apply(q)
	}
	u.RawQuery = q.Encode()

	var body io.Reader
	if spec.Body != nil {
		data, err := json.Marshal(spec.Body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

// encodeQuery renders filters. Empty values are dropped so that an unset
// optional tool argument never reaches the API.
func encodeQuery(filters map[string]any) url.Values {
	q := url.Values{}
	for key, value := range filters {
		switch v := value.(type) {
		case nil:
		case string:
			if v != "" {
				q.Set(key, v)
			}
		case []string:
			for _, s := range v {
				if s != "" {
					q.Add(key, s)
				}
			}
		case bool:
			q.Set(key, strconv.FormatBool(v))
		case int:
			q.Set(key, strconv.Itoa(v))
		case int64:
			q.Set(key, strconv.FormatInt(v, 10))
		case float64:
			q.Set(key, strconv.FormatFloat(v, 'f', -1, 64))
		case *bool:
			if v != nil {
				q.Set(key, strconv.FormatBool(*v))
			}
		case *int:
			if v != nil {
				q.Set(key, strconv.Itoa(*v))
			}
		case time.Time:
			if !v.IsZero() {
				q.Set(key, v.UTC().Format(time.RFC3339))
			}
		default:
			q.Set(key, fmt.Sprint(v))
		}
	}
	return q
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return instrumentation.UpstreamSuccess
	case IsKind(err, KindTransportFailure):
		return instrumentation.UpstreamTransport
	case IsKind(err, KindResponseShapeMismatch):
		return instrumentation.UpstreamShapeMismatch
	default:
		return instrumentation.UpstreamError
	}
}
