package state

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/agentkit/backends/internal/logging"
	"github.com/agentkit/backends/internal/monitoring"
	"github.com/agentkit/backends/internal/protocol"
)

// Backend serves the file-operation protocol from a caller-owned map of
// path to record. The mutex only guards map access from parallel tool
// calls within one turn; genuinely conflicting writers must serialize
// themselves, per the protocol's concurrency contract.
type Backend struct {
	mu      sync.Mutex
	files   map[string]*protocol.FileRecord
	format  protocol.RecordFormat
	log     *logging.Logger
	metrics *monitoring.Metrics
}

var _ protocol.Backend = (*Backend)(nil)

// New wraps files in a state backend. The record format chooses the
// at-rest encoding for snapshots of this session; decoding always accepts
// both formats. logger and metrics may be nil.
func New(files map[string]*protocol.FileRecord, format protocol.RecordFormat, logger *logging.Logger, metrics *monitoring.Metrics) *Backend {
	if files == nil {
		files = make(map[string]*protocol.FileRecord)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Backend{
		files:   files,
		format:  format,
		log:     logger.Named("state"),
		metrics: metrics,
	}
}

// Format returns the construction-time record format, for callers
// snapshotting the map with protocol.EncodeFileRecord.
func (b *Backend) Format() protocol.RecordFormat { return b.format }

// List returns the immediate children of dir, synthesizing directory
// entries for keys nested deeper than the queried prefix.
func (b *Backend) List(ctx context.Context, dir string) []protocol.FileInfo {
	start := time.Now()
	defer func() { b.metrics.Observe("state", "list", start, false) }()

	prefix := normalizeDir(dir)

	b.mu.Lock()
	defer b.mu.Unlock()

	infos := []protocol.FileInfo{}
	seenDirs := map[string]bool{}
	for _, key := range b.sortedKeys() {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := key[len(prefix):]
		if rest == "" {
			continue
		}
		if i := strings.Index(rest, "/"); i >= 0 {
			subdir := prefix + rest[:i+1]
			if !seenDirs[subdir] {
				seenDirs[subdir] = true
				infos = append(infos, protocol.FileInfo{Path: subdir, IsDir: true})
			}
			continue
		}
		rec := b.files[key]
		infos = append(infos, protocol.FileInfo{
			Path:       key,
			Size:       rec.Size(),
			ModifiedAt: rec.ModifiedAt,
		})
	}
	return infos
}

// Read returns numbered lines [offset, offset+limit) of the decoded
// content, or a textual sentinel for a missing or empty file.
func (b *Backend) Read(ctx context.Context, p string, offset, limit int) string {
	start := time.Now()
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = protocol.DefaultReadLimit
	}

	b.mu.Lock()
	rec, ok := b.files[p]
	b.mu.Unlock()

	if !ok {
		b.metrics.Observe("state", "read", start, true)
		return protocol.MsgNotFound(p)
	}
	text := rec.Text()
	if text == "" {
		b.metrics.Observe("state", "read", start, false)
		return protocol.MsgEmptyFile(p)
	}
	b.metrics.Observe("state", "read", start, false)
	return numberedWindow(text, offset, limit)
}

// Search matches pattern against every line of every file under dir,
// optionally restricted to paths matching include.
func (b *Backend) Search(ctx context.Context, pattern, dir, include string) ([]protocol.SearchMatch, error) {
	start := time.Now()
	re, err := regexp.Compile(pattern)
	if err != nil {
		b.metrics.Observe("state", "search", start, true)
		return nil, fmt.Errorf("invalid search pattern %q: %w", pattern, err)
	}
	prefix := normalizeDir(dir)

	b.mu.Lock()
	defer b.mu.Unlock()

	matches := []protocol.SearchMatch{}
	for _, key := range b.sortedKeys() {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if include != "" && !matchesInclude(include, key, prefix) {
			continue
		}
		for i, line := range splitLines(b.files[key].Text()) {
			if re.MatchString(line) {
				matches = append(matches, protocol.SearchMatch{Path: key, Line: i + 1, Text: line})
			}
		}
	}
	b.metrics.Observe("state", "search", start, false)
	return matches, nil
}

// Glob matches pattern (** included) against keys under dir, returning
// paths relative to that root. A malformed pattern degrades to an empty
// slice.
func (b *Backend) Glob(ctx context.Context, pattern, dir string) []protocol.FileInfo {
	start := time.Now()
	defer func() { b.metrics.Observe("state", "glob", start, false) }()

	prefix := normalizeDir(dir)

	b.mu.Lock()
	defer b.mu.Unlock()

	infos := []protocol.FileInfo{}
	for _, key := range b.sortedKeys() {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rel := key[len(prefix):]
		ok, err := doublestar.Match(pattern, rel)
		if err != nil {
			return []protocol.FileInfo{}
		}
		if !ok {
			continue
		}
		rec := b.files[key]
		infos = append(infos, protocol.FileInfo{
			Path:       rel,
			Size:       rec.Size(),
			ModifiedAt: rec.ModifiedAt,
		})
	}
	return infos
}

// Write creates a new record. An existing path fails without being
// touched; the returned delta carries the new record for checkpointing.
func (b *Backend) Write(ctx context.Context, p, content string) protocol.WriteResult {
	start := time.Now()

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.files[p]; exists {
		b.metrics.Observe("state", "write", start, true)
		return protocol.WriteResult{Error: protocol.MsgAlreadyExists(p)}
	}
	rec := protocol.NewFileRecord(content, time.Now().UTC())
	b.files[p] = rec
	b.metrics.Observe("state", "write", start, false)
	return protocol.WriteResult{
		Path:  p,
		Delta: map[string]*protocol.FileRecord{p: rec},
	}
}

// Edit replaces oldString with newString under the exactness invariant,
// refreshing the record's modification time in place.
func (b *Backend) Edit(ctx context.Context, p, oldString, newString string, replaceAll bool) protocol.EditResult {
	start := time.Now()

	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.files[p]
	if !ok {
		b.metrics.Observe("state", "edit", start, true)
		return protocol.EditResult{WriteResult: protocol.WriteResult{Error: protocol.MsgNotFound(p)}}
	}

	text := rec.Text()
	count := strings.Count(text, oldString)
	switch {
	case count == 0:
		b.metrics.Observe("state", "edit", start, true)
		return protocol.EditResult{WriteResult: protocol.WriteResult{Error: protocol.MsgNoOccurrence(p)}}
	case count > 1 && !replaceAll:
		b.metrics.Observe("state", "edit", start, true)
		return protocol.EditResult{WriteResult: protocol.WriteResult{Error: protocol.MsgAmbiguous(p, count)}}
	}

	if replaceAll {
		text = strings.ReplaceAll(text, oldString, newString)
	} else {
		text = strings.Replace(text, oldString, newString, 1)
	}
	rec.SetText(text, time.Now().UTC())

	b.metrics.Observe("state", "edit", start, false)
	return protocol.EditResult{
		WriteResult: protocol.WriteResult{
			Path:  p,
			Delta: map[string]*protocol.FileRecord{p: rec},
		},
		Occurrences: count,
	}
}

// UploadFiles is unsupported by design: all mutation must flow through
// write/edit so the session snapshot stays the single source of truth.
func (b *Backend) UploadFiles(ctx context.Context, files []protocol.FileUploadRequest) ([]protocol.FileUploadResponse, error) {
	return nil, fmt.Errorf("state backend uploads: %w; mutate through write/edit instead", protocol.ErrUnsupported)
}

// DownloadFiles decodes stored records back to raw bytes, one response
// per requested path, with independent per-item outcomes.
func (b *Backend) DownloadFiles(ctx context.Context, paths []string) ([]protocol.FileDownloadResponse, error) {
	start := time.Now()

	b.mu.Lock()
	defer b.mu.Unlock()

	responses := make([]protocol.FileDownloadResponse, 0, len(paths))
	for _, p := range paths {
		resp := protocol.FileDownloadResponse{Path: p}
		rec, ok := b.files[p]
		if !ok {
			resp.Error = protocol.MsgFileNotFound(p)
		} else if raw, err := rec.Bytes(); err != nil {
			resp.Error = fmt.Sprintf("corrupt record at %s: %v", p, err)
		} else {
			resp.Content = raw
		}
		responses = append(responses, resp)
	}
	b.metrics.Observe("state", "download", start, false)
	return responses, nil
}

func (b *Backend) sortedKeys() []string {
	keys := make([]string, 0, len(b.files))
	for k := range b.files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// normalizeDir ensures a directory prefix ends with exactly one slash.
func normalizeDir(dir string) string {
	if dir == "" || dir == "/" {
		return "/"
	}
	return strings.TrimSuffix(dir, "/") + "/"
}

// splitLines splits decoded content into lines, treating a trailing
// newline as a terminator rather than the start of a phantom empty line.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// numberedWindow renders lines [offset, offset+limit) with the shared
// 6-digit line number prefix.
func numberedWindow(text string, offset, limit int) string {
	lines := splitLines(text)
	if offset >= len(lines) {
		return ""
	}
	end := offset + limit
	if end > len(lines) {
		end = len(lines)
	}
	var sb strings.Builder
	for i := offset; i < end; i++ {
		if i > offset {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%6d\t%s", i+1, lines[i])
	}
	return sb.String()
}

// matchesInclude mimics grep's --include: the glob applies to the base
// name, or to the root-relative path when it contains a separator.
func matchesInclude(include, key, prefix string) bool {
	if ok, _ := doublestar.Match(include, path.Base(key)); ok {
		return true
	}
	ok, _ := doublestar.Match(include, strings.TrimPrefix(key, prefix))
	return ok
}
