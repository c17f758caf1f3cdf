// Package localexec provides a local-shell Executor and a complete
// sandbox backend built on it. It is the reference transport: the same
// generated scripts a remote sandbox would run execute here under sh -c,
// which is how the derived operations are exercised in tests and from
// the CLI.
package localexec

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"github.com/agentkit/backends/internal/logging"
	"github.com/agentkit/backends/internal/protocol"
)

// DefaultMaxOutputBytes truncates combined command output past this size.
const DefaultMaxOutputBytes = 100_000

// Runner executes one command at a time under the local shell.
type Runner struct {
	// Timeout bounds a single command; zero means no bound beyond the
	// caller's context.
	Timeout time.Duration
	// MaxOutputBytes caps combined output; exceeding it sets Truncated.
	MaxOutputBytes int
	// Dir is the working directory for commands; empty means inherit.
	Dir string

	log *logging.Logger
}

// NewRunner builds a local runner. logger may be nil.
func NewRunner(timeout time.Duration, maxOutput int, logger *logging.Logger) *Runner {
	if maxOutput <= 0 {
		maxOutput = DefaultMaxOutputBytes
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		Timeout:        timeout,
		MaxOutputBytes: maxOutput,
		log:            logger.Named("localexec"),
	}
}

// Execute runs command under sh -c, blocking until completion or timeout.
// Nonzero exit codes are ordinary outcomes, not errors; the returned
// error is reserved for transport-level failures.
func (r *Runner) Execute(ctx context.Context, command string) (protocol.ExecuteResponse, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = r.Dir
	out, err := cmd.CombinedOutput()

	resp := protocol.ExecuteResponse{Output: string(out)}
	if len(out) > r.MaxOutputBytes {
		resp.Output = string(out[:r.MaxOutputBytes])
		resp.Truncated = true
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		r.log.Warn("command timed out", zap.Duration("timeout", r.Timeout))
		return resp, fmt.Errorf("command timed out: %w", ctxErr)
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		resp.ExitCode = 0
	case errors.As(err, &exitErr):
		resp.ExitCode = exitErr.ExitCode()
	default:
		return resp, fmt.Errorf("command execution failed: %w", err)
	}
	return resp, nil
}
