package localexec

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/agentkit/backends/internal/logging"
	"github.com/agentkit/backends/internal/monitoring"
	"github.com/agentkit/backends/internal/protocol"
	"github.com/agentkit/backends/internal/sandbox"
)

// Sandbox is a protocol.SandboxBackend running on the local machine. File
// operations are derived through the generic adapter; only bulk transfer
// is implemented natively, since the host filesystem is directly
// reachable.
type Sandbox struct {
	*sandbox.Adapter
	runner *Runner
	id     string
}

var _ protocol.SandboxBackend = (*Sandbox)(nil)

// New builds a local sandbox backend. logger and metrics may be nil.
func New(runner *Runner, logger *logging.Logger, metrics *monitoring.Metrics) *Sandbox {
	return &Sandbox{
		Adapter: sandbox.NewAdapter(runner, logger, metrics),
		runner:  runner,
		id:      uuid.NewString(),
	}
}

// ID identifies this sandbox instance.
func (s *Sandbox) ID() string { return s.id }

// Execute runs one raw command through the local runner.
func (s *Sandbox) Execute(ctx context.Context, command string) (protocol.ExecuteResponse, error) {
	return s.runner.Execute(ctx, command)
}

// UploadFiles writes raw bytes to each path, creating parent directories.
// Every request gets exactly one response, in order; one failing item
// never aborts the rest.
func (s *Sandbox) UploadFiles(ctx context.Context, files []protocol.FileUploadRequest) ([]protocol.FileUploadResponse, error) {
	responses := make([]protocol.FileUploadResponse, 0, len(files))
	for _, f := range files {
		resp := protocol.FileUploadResponse{Path: f.Path}
		if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
			resp.Error = err.Error()
		} else if err := os.WriteFile(f.Path, f.Content, 0o644); err != nil {
			resp.Error = err.Error()
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// DownloadFiles reads raw bytes from each path with per-item isolation.
func (s *Sandbox) DownloadFiles(ctx context.Context, paths []string) ([]protocol.FileDownloadResponse, error) {
	responses := make([]protocol.FileDownloadResponse, 0, len(paths))
	for _, p := range paths {
		resp := protocol.FileDownloadResponse{Path: p}
		data, err := os.ReadFile(p)
		if err != nil {
			resp.Error = protocol.MsgFileNotFound(p)
		} else {
			resp.Content = data
		}
		responses = append(responses, resp)
	}
	return responses, nil
}
