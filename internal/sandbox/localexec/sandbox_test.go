package localexec

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentkit/backends/internal/protocol"
)

// The derived operations run real generated scripts under sh -c, so these
// tests need the usual POSIX toolbox plus python3 for list/glob/edit.
func requireTools(t *testing.T, tools ...string) {
	t.Helper()
	for _, tool := range tools {
		if _, err := exec.LookPath(tool); err != nil {
			t.Skipf("%s not available on this host", tool)
		}
	}
}

func newTestSandbox(t *testing.T) *Sandbox {
	t.Helper()
	return New(NewRunner(0, 0, nil), nil, nil)
}

func TestWriteReadRoundTrip(t *testing.T) {
	requireTools(t, "awk", "base64")
	box := newTestSandbox(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "foo.md")

	res := box.Write(ctx, path, "alpha beta gamma\ntwo three four\n")
	require.True(t, res.OK(), res.Error)
	assert.Equal(t, path, res.Path)

	full := box.Read(ctx, path, 0, 0)
	assert.Equal(t, "     1\talpha beta gamma\n     2\ttwo three four", full)

	window := box.Read(ctx, path, 1, 1)
	assert.Equal(t, "     2\ttwo three four", window)
}

func TestReadWindowingReconstructsFile(t *testing.T) {
	requireTools(t, "awk", "base64")
	box := newTestSandbox(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "lines.txt")

	var content strings.Builder
	for i := 1; i <= 10; i++ {
		fmt.Fprintf(&content, "line %d\n", i)
	}
	require.True(t, box.Write(ctx, path, content.String()).OK())

	var windows []string
	for offset := 0; offset < 10; offset += 3 {
		if w := box.Read(ctx, path, offset, 3); w != "" {
			windows = append(windows, w)
		}
	}
	assert.Equal(t, box.Read(ctx, path, 0, 0), strings.Join(windows, "\n"))
}

func TestReadMissingAndEmpty(t *testing.T) {
	requireTools(t, "awk", "base64")
	box := newTestSandbox(t)
	ctx := context.Background()
	dir := t.TempDir()

	missing := filepath.Join(dir, "absent.txt")
	assert.Equal(t, protocol.MsgNotFound(missing), box.Read(ctx, missing, 0, 0))

	empty := filepath.Join(dir, "empty.txt")
	_, err := box.UploadFiles(ctx, []protocol.FileUploadRequest{{Path: empty}})
	require.NoError(t, err)
	assert.Equal(t, protocol.MsgEmptyFile(empty), box.Read(ctx, empty, 0, 0))
}

func TestWriteCollisionLeavesOriginal(t *testing.T) {
	requireTools(t, "base64")
	box := newTestSandbox(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "once.txt")

	require.True(t, box.Write(ctx, path, "first").OK())

	res := box.Write(ctx, path, "second")
	assert.Equal(t, protocol.MsgAlreadyExists(path), res.Error)

	downloads, err := box.DownloadFiles(ctx, []string{path})
	require.NoError(t, err)
	assert.Equal(t, "first", string(downloads[0].Content))
}

func TestEditExactness(t *testing.T) {
	requireTools(t, "base64", "python3")
	box := newTestSandbox(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "foo.md")

	require.True(t, box.Write(ctx, path, "alpha beta gamma\ntwo three four\n").OK())

	// exactly one occurrence
	res := box.Edit(ctx, path, "two", "TWO", false)
	require.True(t, res.OK(), res.Error)
	assert.Equal(t, 1, res.Occurrences)

	downloads, err := box.DownloadFiles(ctx, []string{path})
	require.NoError(t, err)
	assert.Equal(t, "alpha beta gamma\nTWO three four\n", string(downloads[0].Content))

	// zero occurrences: content untouched
	res = box.Edit(ctx, path, "nonexistent", "x", false)
	assert.Equal(t, protocol.MsgNoOccurrence(path), res.Error)

	// multiple occurrences without replace_all: content untouched
	multi := filepath.Join(t.TempDir(), "multi.txt")
	require.True(t, box.Write(ctx, multi, "dup dup dup\n").OK())
	res = box.Edit(ctx, multi, "dup", "x", false)
	assert.Equal(t, protocol.MsgAmbiguous(multi, 3), res.Error)
	downloads, err = box.DownloadFiles(ctx, []string{multi})
	require.NoError(t, err)
	assert.Equal(t, "dup dup dup\n", string(downloads[0].Content))

	// replace_all reports the original count
	res = box.Edit(ctx, multi, "dup", "x", true)
	require.True(t, res.OK(), res.Error)
	assert.Equal(t, 3, res.Occurrences)
	downloads, err = box.DownloadFiles(ctx, []string{multi})
	require.NoError(t, err)
	assert.Equal(t, "x x x\n", string(downloads[0].Content))
}

func TestEditMissingFile(t *testing.T) {
	requireTools(t, "python3")
	box := newTestSandbox(t)
	path := filepath.Join(t.TempDir(), "ghost.txt")

	res := box.Edit(context.Background(), path, "a", "b", false)
	assert.Equal(t, protocol.MsgNotFound(path), res.Error)
}

func TestSearchFindsLiteralMatches(t *testing.T) {
	requireTools(t, "grep", "base64")
	box := newTestSandbox(t)
	ctx := context.Background()
	dir := t.TempDir()

	require.True(t, box.Write(ctx, filepath.Join(dir, "a.txt"), "nothing here\nthe needle line\n").OK())
	require.True(t, box.Write(ctx, filepath.Join(dir, "b.md"), "needle up top\n").OK())

	matches, err := box.Search(ctx, "needle", dir, "")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	for _, m := range matches {
		assert.Contains(t, m.Text, "needle")
	}

	// glob filter narrows to one file
	matches, err = box.Search(ctx, "needle", dir, "*.md")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, filepath.Join(dir, "b.md"), matches[0].Path)
	assert.Equal(t, 1, matches[0].Line)
}

func TestSearchNoMatches(t *testing.T) {
	requireTools(t, "grep")
	box := newTestSandbox(t)

	matches, err := box.Search(context.Background(), "absent-pattern", t.TempDir(), "")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestGlobRecursive(t *testing.T) {
	requireTools(t, "python3", "base64")
	box := newTestSandbox(t)
	ctx := context.Background()
	dir := t.TempDir()

	require.True(t, box.Write(ctx, filepath.Join(dir, "main.go"), "package main\n").OK())
	require.True(t, box.Write(ctx, filepath.Join(dir, "pkg", "util.go"), "package pkg\n").OK())
	require.True(t, box.Write(ctx, filepath.Join(dir, "README.md"), "docs\n").OK())

	infos := box.Glob(ctx, "**/*.go", dir)
	paths := make([]string, 0, len(infos))
	for _, fi := range infos {
		paths = append(paths, fi.Path)
	}
	// results are relative to the queried root
	assert.ElementsMatch(t, []string{"main.go", "pkg/util.go"}, paths)
}

func TestListImmediateChildren(t *testing.T) {
	requireTools(t, "python3", "base64")
	box := newTestSandbox(t)
	ctx := context.Background()
	dir := t.TempDir()

	require.True(t, box.Write(ctx, filepath.Join(dir, "file.txt"), "data\n").OK())
	require.True(t, box.Write(ctx, filepath.Join(dir, "sub", "nested.txt"), "deep\n").OK())

	infos := box.List(ctx, dir)
	require.Len(t, infos, 2)

	byPath := map[string]protocol.FileInfo{}
	for _, fi := range infos {
		byPath[filepath.Base(fi.Path)] = fi
	}
	assert.False(t, byPath["file.txt"].IsDir)
	assert.Equal(t, int64(5), byPath["file.txt"].Size)
	assert.True(t, byPath["sub"].IsDir)
}

func TestListMissingDirectoryIsEmpty(t *testing.T) {
	requireTools(t, "python3")
	box := newTestSandbox(t)

	infos := box.List(context.Background(), filepath.Join(t.TempDir(), "nowhere"))
	assert.Empty(t, infos)
}

func TestBatchDownloadPartialSuccess(t *testing.T) {
	box := newTestSandbox(t)
	ctx := context.Background()
	dir := t.TempDir()

	valid := filepath.Join(dir, "present.bin")
	_, err := box.UploadFiles(ctx, []protocol.FileUploadRequest{{Path: valid, Content: []byte{0x00, 0xff, 0x10}}})
	require.NoError(t, err)

	invalid := filepath.Join(dir, "missing.bin")
	responses, err := box.DownloadFiles(ctx, []string{valid, invalid})
	require.NoError(t, err)
	require.Len(t, responses, 2)

	assert.Equal(t, valid, responses[0].Path)
	assert.Empty(t, responses[0].Error)
	assert.Equal(t, []byte{0x00, 0xff, 0x10}, responses[0].Content)

	assert.Equal(t, invalid, responses[1].Path)
	assert.Equal(t, protocol.MsgFileNotFound(invalid), responses[1].Error)
}

func TestSandboxHasStableID(t *testing.T) {
	box := newTestSandbox(t)
	require.NotEmpty(t, box.ID())
	assert.Equal(t, box.ID(), box.ID())
	assert.NotEqual(t, box.ID(), newTestSandbox(t).ID())
}
