package protocol

import (
	"errors"
	"fmt"
)

// ErrUnsupported signals that a backend does not offer an operation at
// all. Unlike recoverable outcomes this is an integration error and is
// returned as a real Go error.
var ErrUnsupported = errors.New("operation not supported by this backend")

// Canonical failure messages. Both backends must produce byte-identical
// text for the same condition so the tool loop can pattern-match on it.

// MsgNotFound is the sentinel for a missing read or edit target.
func MsgNotFound(path string) string {
	return fmt.Sprintf("File not found: %s", path)
}

// MsgEmptyFile is the sentinel Read returns for an existing empty file.
func MsgEmptyFile(path string) string {
	return fmt.Sprintf("File is empty: %s", path)
}

// MsgAlreadyExists is the write-collision failure.
func MsgAlreadyExists(path string) string {
	return fmt.Sprintf("File already exists: %s. Writes never overwrite; use edit to modify it.", path)
}

// MsgNoOccurrence is the edit failure for a search string that does not
// appear in the file.
func MsgNoOccurrence(path string) string {
	return fmt.Sprintf("String to replace not found in %s", path)
}

// MsgAmbiguous is the edit failure for a search string that appears more
// than once without replace_all.
func MsgAmbiguous(path string, count int) string {
	return fmt.Sprintf("Found %d occurrences of the string in %s; add surrounding context or set replace_all", count, path)
}

// MsgFileNotFound is the per-item download failure; it repeats the path
// so a caller can correct it and retry only that item.
func MsgFileNotFound(path string) string {
	return fmt.Sprintf("file_not_found: %s", path)
}
