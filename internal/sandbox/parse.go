package sandbox

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/agentkit/backends/internal/protocol"
)

// scriptEntry is the JSON line shape emitted by the list and glob scripts.
type scriptEntry struct {
	Path  string  `json:"path"`
	Size  int64   `json:"size"`
	Mtime float64 `json:"mtime"`
	IsDir bool    `json:"is_dir"`
}

// parseEntries decodes JSON-per-line script output into FileInfo values.
// Unparseable lines are skipped: a partially damaged listing degrades to
// fewer entries rather than an error.
func parseEntries(output string) []protocol.FileInfo {
	infos := []protocol.FileInfo{}
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "{") {
			continue
		}
		var e scriptEntry
		if err := sonic.UnmarshalString(line, &e); err != nil {
			continue
		}
		sec, frac := math.Modf(e.Mtime)
		infos = append(infos, protocol.FileInfo{
			Path:       e.Path,
			IsDir:      e.IsDir,
			Size:       e.Size,
			ModifiedAt: time.Unix(int64(sec), int64(frac*1e9)).UTC(),
		})
	}
	return infos
}

// parseGrepOutput splits path:line:text triples on the first two colons
// only, since the matched text may itself contain colons.
func parseGrepOutput(output string) []protocol.SearchMatch {
	matches := []protocol.SearchMatch{}
	for _, line := range strings.Split(output, "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ":", 3)
		if len(parts) != 3 {
			continue
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil || n < 1 {
			continue
		}
		matches = append(matches, protocol.SearchMatch{
			Path: parts[0],
			Line: n,
			Text: parts[2],
		})
	}
	return matches
}

// parseCount reads the replacement count the edit script prints on
// stdout.
func parseCount(output string) int {
	n, err := strconv.Atoi(strings.TrimSpace(output))
	if err != nil {
		return 0
	}
	return n
}
