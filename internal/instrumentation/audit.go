package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"github.com/giantswarm/mcp-cloudflare-one/internal/logging"
)

// ToolInvocation captures the audit record of one MCP tool call.
type ToolInvocation struct {
	Tool          string
	UserID        string
	UserEmail     string
	PrincipalKind string
	AccountID     string

	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	TraceID string
	SpanID  string
}

// NewToolInvocation starts an audit record for tool.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{
		Tool:      tool,
		StartTime: time.Now(),
	}
}

// WithUser sets the user identity. Either value may be empty.
func (ti *ToolInvocation) WithUser(userID, email string) *ToolInvocation {
	ti.UserID = userID
	ti.UserEmail = email
	return ti
}

// WithPrincipal sets the principal kind.
func (ti *ToolInvocation) WithPrincipal(kind string) *ToolInvocation {
	ti.PrincipalKind = kind
	return ti
}

// WithAccount sets the account the call operated on.
func (ti *ToolInvocation) WithAccount(accountID string) *ToolInvocation {
	ti.AccountID = accountID
	return ti
}

// WithSpanContext copies the trace and span ids from ctx.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	ti.TraceID = GetTraceID(ctx)
	ti.SpanID = GetSpanID(ctx)
	return ti
}

// Complete finishes the record.
func (ti *ToolInvocation) Complete(success bool, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// CompleteSuccess finishes the record as successful.
func (ti *ToolInvocation) CompleteSuccess() *ToolInvocation {
	return ti.Complete(true, nil)
}

// CompleteWithError finishes the record as failed.
func (ti *ToolInvocation) CompleteWithError(err error) *ToolInvocation {
	return ti.Complete(false, err)
}

// UserDomain returns the email domain of the user.
func (ti *ToolInvocation) UserDomain() string {
	return ExtractUserDomain(ti.UserEmail)
}

// Status returns "success" or "error".
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns low-cardinality attributes suitable for operational logs.
func (ti *ToolInvocation) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.String("user_domain", ti.UserDomain()),
		slog.String("principal_kind", ti.PrincipalKind),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}
	return attrs
}

// LogAuditAttrs returns the full audit attributes. The user id is hashed;
// the account id is kept as-is so operators can trace tenant access.
func (ti *ToolInvocation) LogAuditAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		logging.UserHash(ti.UserID),
		slog.String("user_domain", ti.UserDomain()),
		slog.String("principal_kind", ti.PrincipalKind),
		slog.String("account_id", ti.AccountID),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID))
	}
	if ti.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", ti.SpanID))
	}
	return attrs
}

// AuditLogger writes tool invocation audit records.
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger returns an AuditLogger. A nil logger uses slog.Default().
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{logger: logger}
}

// LogToolInvocation writes one audit record.
func (al *AuditLogger) LogToolInvocation(ctx context.Context, ti *ToolInvocation) {
	level := slog.LevelInfo
	if !ti.Success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(ctx, level, "tool_invocation", ti.LogAuditAttrs()...)
}

// TraceIDFromContext returns the trace id of the span in ctx, or "".
func TraceIDFromContext(ctx context.Context) string {
	return GetTraceID(ctx)
}
