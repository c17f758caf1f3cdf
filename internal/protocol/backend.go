package protocol

import "context"

// Backend is the uniform file-operation surface exposed to the tool loop.
//
// Operations never return Go errors for ordinary misses: List and Glob
// yield empty slices, Read yields a sentinel string, Write and Edit carry
// failures in their result's Error field. Search returns an error only
// for malformed input such as an invalid pattern.
type Backend interface {
	// List returns the immediate children of path. Missing or empty
	// directories yield an empty slice.
	List(ctx context.Context, path string) []FileInfo

	// Read returns lines [offset, offset+limit) of the file, each
	// prefixed with its 1-indexed line number, or a textual sentinel
	// when the file is missing or empty. A limit <= 0 means
	// DefaultReadLimit.
	Read(ctx context.Context, path string, offset, limit int) string

	// Search finds lines matching pattern under path, optionally
	// restricted to files matching include.
	Search(ctx context.Context, pattern, path, include string) ([]SearchMatch, error)

	// Glob returns entries matching pattern (including recursive **)
	// under path, with paths relative to that root.
	Glob(ctx context.Context, pattern, path string) []FileInfo

	// Write creates a new file. It fails, and never overwrites, if the
	// path already exists.
	Write(ctx context.Context, path, content string) WriteResult

	// Edit replaces oldString with newString. Without replaceAll the
	// search string must occur exactly once: zero and multiple
	// occurrences are distinct failures.
	Edit(ctx context.Context, path, oldString, newString string, replaceAll bool) EditResult
}

// SandboxBackend is a Backend bound to an isolated execution environment.
// Upload and download are bulk, non-model-facing transfer primitives:
// building blocks for user-defined tooling, not for the agent itself.
type SandboxBackend interface {
	Backend

	// ID identifies the sandbox instance.
	ID() string

	// Execute runs one command to completion and returns its combined
	// output and exit code. The error is non-nil only when the
	// transport itself failed or timed out.
	Execute(ctx context.Context, command string) (ExecuteResponse, error)

	// UploadFiles writes raw bytes to each path. The response slice has
	// exactly one entry per request, in input order, with independent
	// per-item outcomes.
	UploadFiles(ctx context.Context, files []FileUploadRequest) ([]FileUploadResponse, error)

	// DownloadFiles reads raw bytes from each path with the same
	// per-item isolation guarantee as UploadFiles.
	DownloadFiles(ctx context.Context, paths []string) ([]FileDownloadResponse, error)
}
