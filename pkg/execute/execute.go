// pkg/execute/execute.go

// Package execute provides command execution with structured logging.
// Shell interpretation is disabled; callers always pass argv directly.
package execute

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/steward/pkg/steward_err"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Options controls a single command execution.
type Options struct {
	Command string
	Args    []string
	Dir     string
	Timeout time.Duration
	Retries int
	Delay   time.Duration
	Capture bool
	DryRun  bool
	Logger  *zap.Logger
}

// Run executes a command with timeout, bounded retries, and structured logs.
func Run(ctx context.Context, opts Options) (string, error) {
	cmdStr := opts.Command + " " + strings.Join(opts.Args, " ")

	logger := opts.Logger
	if logger == nil {
		logger = zap.L()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := context.WithTimeout(ctx, defaultTimeout(opts.Timeout))
	defer cancel()

	runCtx, span := telemetry.Start(runCtx, "execute.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("command", opts.Command),
		attribute.String("args", strings.Join(opts.Args, " ")),
	)

	if opts.DryRun {
		logger.Info("Dry run mode - command not executed", zap.String("command", cmdStr))
		return "", nil
	}

	logger.Debug("Starting execution", zap.String("command", cmdStr))

	attempts := max(1, opts.Retries)
	var output string
	var err error

	for i := 1; i <= attempts; i++ {
		cmd := exec.CommandContext(runCtx, opts.Command, opts.Args...)
		if opts.Dir != "" {
			cmd.Dir = opts.Dir
		}

		var buf bytes.Buffer
		cmd.Stdout = &buf
		cmd.Stderr = &buf

		err = cmd.Run()
		output = buf.String()

		if err == nil {
			logger.Debug("Execution succeeded", zap.String("command", cmdStr))
			break
		}

		span.RecordError(err)
		logger.Error("Execution failed",
			zap.Error(err),
			zap.Int("attempt", i),
			zap.String("command", cmdStr),
			zap.String("summary", steward_err.ExtractSummary(output, 2)),
		)

		if i < attempts {
			time.Sleep(opts.Delay)
		}
	}

	if err != nil {
		return output, cerr.Wrapf(err, "command failed after %d attempts", attempts)
	}

	if opts.Capture {
		return output, nil
	}
	return "", nil
}

// RunSimple executes a command with minimal options.
func RunSimple(ctx context.Context, cmd string, args ...string) error {
	_, err := Run(ctx, Options{
		Command: cmd,
		Args:    args,
	})
	return err
}

// Capture executes a command and returns its combined output.
func Capture(ctx context.Context, cmd string, args ...string) (string, error) {
	return Run(ctx, Options{
		Command: cmd,
		Args:    args,
		Capture: true,
	})
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func defaultTimeout(t time.Duration) time.Duration {
	if t > 0 {
		return t
	}
	return 30 * time.Second
}
