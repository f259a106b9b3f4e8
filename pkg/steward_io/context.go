// pkg/steward_io/context.go

package steward_io

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/steward/pkg/steward_err"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RuntimeContext carries the per-command context, logger, and span through
// every resolver and realizer call.
type RuntimeContext struct {
	Ctx        context.Context
	Log        *zap.Logger
	Timestamp  time.Time
	Span       trace.Span
	Command    string
	Attributes map[string]string
}

// NewContext sets up tracing and a scoped logger for one command run.
func NewContext(ctx context.Context, cmdName string) *RuntimeContext {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := telemetry.Start(ctx, cmdName)
	traceID := span.SpanContext().TraceID().String()

	logger := zap.L().With(
		zap.String("command", cmdName),
		zap.String("trace_id", traceID),
	).Named(cmdName)

	return &RuntimeContext{
		Ctx:        ctx,
		Log:        logger,
		Timestamp:  time.Now(),
		Span:       span,
		Command:    cmdName,
		Attributes: make(map[string]string),
	}
}

// HandlePanic recovers panics, logs them, and converts to an error.
func (rc *RuntimeContext) HandlePanic(errPtr *error) {
	if r := recover(); r != nil {
		*errPtr = cerr.AssertionFailedf("panic: %v", r)
		rc.Log.Error("panic recovered", zap.Any("panic", r))
	}
}

// End logs the outcome, records span attributes, and closes the span.
func (rc *RuntimeContext) End(errPtr *error) {
	defer rc.Span.End()

	duration := time.Since(rc.Timestamp)
	success := *errPtr == nil

	if success {
		rc.Log.Info("Command completed", zap.Duration("duration", duration))
	} else {
		rc.Log.Error("Command failed", zap.Duration("duration", duration), zap.Error(*errPtr))
	}

	rc.Span.SetAttributes(
		attribute.Bool("success", success),
		attribute.Int64("duration_ms", duration.Milliseconds()),
		attribute.String("args", telemetry.TruncateOrHashArgs(os.Args[1:])),
		attribute.String("error_type", classifyError(*errPtr)),
	)

	_ = rc.Log.Sync()
}

func classifyError(err error) string {
	if err == nil {
		return ""
	}
	if steward_err.IsExpectedUserError(err) {
		return "user"
	}
	return "system"
}

// AttributesSummary renders the collected attributes for span recording.
func (rc *RuntimeContext) AttributesSummary() string {
	parts := make([]string, 0, len(rc.Attributes))
	for k, v := range rc.Attributes {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, " ")
}
