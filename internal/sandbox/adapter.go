package sandbox

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/agentkit/backends/internal/logging"
	"github.com/agentkit/backends/internal/monitoring"
	"github.com/agentkit/backends/internal/protocol"
)

// DefaultMaxWriteBytes caps the decoded payload of a single write.
// Payloads ship base64-encoded inside the generated script, so very large
// writes should go through UploadFiles on backends that support it.
const DefaultMaxWriteBytes = 10 << 20

// Executor is the single capability a concrete sandbox must provide: run
// one command to completion and report combined output plus an exit code.
type Executor interface {
	Execute(ctx context.Context, command string) (protocol.ExecuteResponse, error)
}

// Adapter implements protocol.Backend purely in terms of an Executor.
type Adapter struct {
	exec    Executor
	log     *logging.Logger
	metrics *monitoring.Metrics

	// MaxWriteBytes caps a single write payload after decoding.
	MaxWriteBytes int
}

// NewAdapter builds a derived-operation adapter over exec. logger and
// metrics may be nil.
func NewAdapter(exec Executor, logger *logging.Logger, metrics *monitoring.Metrics) *Adapter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Adapter{
		exec:          exec,
		log:           logger.Named("sandbox"),
		metrics:       metrics,
		MaxWriteBytes: DefaultMaxWriteBytes,
	}
}

func (a *Adapter) run(ctx context.Context, op, command string) (protocol.ExecuteResponse, error) {
	a.log.Debug("dispatching derived operation",
		zap.String("op", op),
		zap.Int("command_bytes", len(command)),
	)
	return a.exec.Execute(ctx, command)
}

// List returns the immediate children of path. Any failure, including a
// missing directory, yields an empty slice.
func (a *Adapter) List(ctx context.Context, path string) []protocol.FileInfo {
	start := time.Now()
	resp, err := a.run(ctx, "list", listScript(path))
	failed := err != nil || resp.ExitCode != 0
	a.metrics.Observe("sandbox", "list", start, failed)
	if failed {
		return []protocol.FileInfo{}
	}
	return parseEntries(resp.Output)
}

// Read returns numbered lines [offset, offset+limit) or a textual
// sentinel for a missing or empty file.
func (a *Adapter) Read(ctx context.Context, path string, offset, limit int) string {
	start := time.Now()
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = protocol.DefaultReadLimit
	}

	resp, err := a.run(ctx, "read", readScript(path, offset, limit))
	if err != nil {
		a.metrics.Observe("sandbox", "read", start, true)
		return fmt.Sprintf("Error reading %s: %v", path, err)
	}
	if resp.ExitCode != 0 {
		a.metrics.Observe("sandbox", "read", start, true)
		return protocol.MsgNotFound(path)
	}
	if strings.Contains(resp.Output, emptyFileMarker) {
		a.metrics.Observe("sandbox", "read", start, false)
		return protocol.MsgEmptyFile(path)
	}
	a.metrics.Observe("sandbox", "read", start, false)
	return strings.TrimRight(resp.Output, "\n")
}

// Search greps recursively under path. No matches is an empty slice; an
// error is returned only for malformed input or a failed transport.
func (a *Adapter) Search(ctx context.Context, pattern, path, include string) ([]protocol.SearchMatch, error) {
	start := time.Now()
	if path == "" {
		path = "."
	}
	resp, err := a.run(ctx, "search", searchScript(pattern, path, include))
	if err != nil {
		a.metrics.Observe("sandbox", "search", start, true)
		return nil, fmt.Errorf("search failed: %w", err)
	}
	switch resp.ExitCode {
	case 0:
		a.metrics.Observe("sandbox", "search", start, false)
		return parseGrepOutput(resp.Output), nil
	case 1:
		a.metrics.Observe("sandbox", "search", start, false)
		return []protocol.SearchMatch{}, nil
	default:
		a.metrics.Observe("sandbox", "search", start, true)
		return nil, fmt.Errorf("invalid search pattern %q: %s", pattern, strings.TrimSpace(resp.Output))
	}
}

// Glob matches pattern (including recursive **) under path, returning
// entries relative to that root. Failures degrade to an empty slice.
func (a *Adapter) Glob(ctx context.Context, pattern, path string) []protocol.FileInfo {
	start := time.Now()
	if path == "" {
		path = "/"
	}
	resp, err := a.run(ctx, "glob", globScript(pattern, path))
	failed := err != nil || resp.ExitCode != 0
	a.metrics.Observe("sandbox", "glob", start, failed)
	if failed {
		return []protocol.FileInfo{}
	}
	return parseEntries(resp.Output)
}

// Write creates a new file, failing without touching anything when the
// path already exists. The existence probe runs as its own execute call
// before any write attempt.
func (a *Adapter) Write(ctx context.Context, path, content string) protocol.WriteResult {
	start := time.Now()
	if len(content) > a.MaxWriteBytes {
		a.metrics.Observe("sandbox", "write", start, true)
		return protocol.WriteResult{Error: fmt.Sprintf("content exceeds maximum write size of %d bytes", a.MaxWriteBytes)}
	}

	probe, err := a.run(ctx, "write_probe", existsProbe(path))
	if err != nil {
		a.metrics.Observe("sandbox", "write", start, true)
		return protocol.WriteResult{Error: fmt.Sprintf("write failed: %v", err)}
	}
	if probe.ExitCode == 0 {
		a.metrics.Observe("sandbox", "write", start, true)
		return protocol.WriteResult{Error: protocol.MsgAlreadyExists(path)}
	}

	resp, err := a.run(ctx, "write", writeScript(path, content))
	if err != nil {
		a.metrics.Observe("sandbox", "write", start, true)
		return protocol.WriteResult{Error: fmt.Sprintf("write failed: %v", err)}
	}
	if resp.ExitCode != 0 {
		a.metrics.Observe("sandbox", "write", start, true)
		return protocol.WriteResult{Error: fmt.Sprintf("write failed: %s", strings.TrimSpace(resp.Output))}
	}
	a.metrics.Observe("sandbox", "write", start, false)
	return protocol.WriteResult{Path: path}
}

// Edit replaces oldString with newString under the exactness invariant.
// The script encodes the outcome in its exit code, so the mapping below
// never parses free text for control flow.
func (a *Adapter) Edit(ctx context.Context, path, oldString, newString string, replaceAll bool) protocol.EditResult {
	start := time.Now()
	resp, err := a.run(ctx, "edit", editScript(path, oldString, newString, replaceAll))
	if err != nil {
		a.metrics.Observe("sandbox", "edit", start, true)
		return protocol.EditResult{WriteResult: protocol.WriteResult{Error: fmt.Sprintf("edit failed: %v", err)}}
	}

	switch resp.ExitCode {
	case 0:
		a.metrics.Observe("sandbox", "edit", start, false)
		return protocol.EditResult{
			WriteResult: protocol.WriteResult{Path: path},
			Occurrences: parseCount(resp.Output),
		}
	case 1:
		a.metrics.Observe("sandbox", "edit", start, true)
		return protocol.EditResult{WriteResult: protocol.WriteResult{Error: protocol.MsgNoOccurrence(path)}}
	case 2:
		a.metrics.Observe("sandbox", "edit", start, true)
		return protocol.EditResult{WriteResult: protocol.WriteResult{Error: protocol.MsgAmbiguous(path, parseCount(resp.Output))}}
	case 3:
		a.metrics.Observe("sandbox", "edit", start, true)
		return protocol.EditResult{WriteResult: protocol.WriteResult{Error: protocol.MsgNotFound(path)}}
	default:
		a.metrics.Observe("sandbox", "edit", start, true)
		return protocol.EditResult{WriteResult: protocol.WriteResult{Error: fmt.Sprintf("edit failed: %s", strings.TrimSpace(resp.Output))}}
	}
}
