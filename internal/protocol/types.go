package protocol

import "time"

// DefaultReadLimit is the number of lines Read returns when the caller
// does not pass an explicit limit.
const DefaultReadLimit = 2000

// FileInfo describes a single listing or glob entry. Size is best-effort
// and zero for synthesized directory entries.
type FileInfo struct {
	Path       string    `json:"path"`
	IsDir      bool      `json:"is_dir"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at,omitempty"`
}

// SearchMatch is one matching line from a content search. Line is 1-indexed.
type SearchMatch struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

// WriteResult reports the outcome of a write. On success Path is set and
// Delta optionally carries the updated records for checkpoint-backed
// callers; externally persisted backends leave Delta nil. On failure only
// Error is set.
type WriteResult struct {
	Path  string                 `json:"path,omitempty"`
	Delta map[string]*FileRecord `json:"delta,omitempty"`
	Error string                 `json:"error,omitempty"`
}

// OK reports whether the operation succeeded.
func (r WriteResult) OK() bool { return r.Error == "" }

// EditResult extends WriteResult with the number of replacements made.
type EditResult struct {
	WriteResult
	Occurrences int `json:"occurrences,omitempty"`
}

// ExecuteResponse is the outcome of one command run inside a sandbox.
// Output is combined stdout and stderr.
type ExecuteResponse struct {
	Output    string `json:"output"`
	ExitCode  int    `json:"exit_code"`
	Truncated bool   `json:"truncated"`
}

// FileUploadRequest carries raw bytes for one path in a bulk upload.
type FileUploadRequest struct {
	Path    string `json:"path"`
	Content []byte `json:"content"`
}

// FileUploadResponse reports the per-path outcome of a bulk upload. Error
// names the failing path so a caller can correct it and retry that item.
type FileUploadResponse struct {
	Path  string `json:"path"`
	Error string `json:"error,omitempty"`
}

// FileDownloadResponse reports the per-path outcome of a bulk download.
type FileDownloadResponse struct {
	Path    string `json:"path"`
	Content []byte `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}
