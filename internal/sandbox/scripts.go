package sandbox

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// emptyFileMarker is printed by the read script for an existing empty
// file, so the adapter can tell "empty" apart from "no output in window".
const emptyFileMarker = "__BACKEND_EMPTY_FILE__"

// shQuote wraps s in single quotes for safe interpolation into a POSIX
// shell command, escaping any embedded single quotes.
func shQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// b64 encodes arbitrary text for transport inside a generated script.
// Base64 survives any shell or python quoting context untouched.
func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// readScript checks existence (exit 1 when missing) and emptiness (prints
// the marker, exit 0), then slices lines [offset, offset+limit) printing
// each as a 6-digit line number, a tab, and the content.
func readScript(path string, offset, limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "f=%s\n", shQuote(path))
	b.WriteString("if [ ! -f \"$f\" ]; then exit 1; fi\n")
	fmt.Fprintf(&b, "if [ ! -s \"$f\" ]; then echo %s; exit 0; fi\n", emptyFileMarker)
	fmt.Fprintf(&b, "awk -v s=%d -v e=%d 'NR > s && NR <= e { printf \"%%6d\\t%%s\\n\", NR, $0 }' \"$f\"\n", offset, offset+limit)
	return b.String()
}

// existsProbe exits 0 when the path exists. Run before any write so the
// exists-means-fail invariant holds without ever touching the file.
func existsProbe(path string) string {
	return fmt.Sprintf("test -e %s", shQuote(path))
}

// writeScript creates parent directories and writes the payload. Content
// travels base64-encoded rather than string-interpolated so arbitrary
// bytes cannot break out of the script.
func writeScript(path, content string) string {
	q := shQuote(path)
	var b strings.Builder
	fmt.Fprintf(&b, "d=$(dirname %s)\n", q)
	b.WriteString("mkdir -p \"$d\" || exit 1\n")
	fmt.Fprintf(&b, "printf '%%s' %s | base64 -d > %s\n", shQuote(b64(content)), q)
	return b.String()
}

// editScript counts occurrences and encodes the outcome in the exit code:
// 0 success (replacement count on stdout), 1 zero occurrences, 2 multiple
// occurrences without replace_all (count on stdout), 3 missing file.
func editScript(path, oldString, newString string, replaceAll bool) string {
	pyBool := "False"
	if replaceAll {
		pyBool = "True"
	}
	return fmt.Sprintf(`python3 - <<'PYEOF'
import base64, io, sys
path = base64.b64decode("%s").decode("utf-8")
old = base64.b64decode("%s").decode("utf-8")
new = base64.b64decode("%s").decode("utf-8")
replace_all = %s
try:
    with io.open(path, "r", encoding="utf-8") as fh:
        text = fh.read()
except OSError:
    sys.exit(3)
count = text.count(old)
if count == 0:
    sys.exit(1)
if count > 1 and not replace_all:
    print(count)
    sys.exit(2)
with io.open(path, "w", encoding="utf-8") as fh:
    fh.write(text.replace(old, new) if replace_all else text.replace(old, new, 1))
print(count)
PYEOF
`, b64(path), b64(oldString), b64(newString), pyBool)
}

// searchScript lowers to a recursive grep printing path:line:text
// triples. Exit 1 means no matches; higher codes mean malformed input.
func searchScript(pattern, path, include string) string {
	var b strings.Builder
	b.WriteString("grep -rn ")
	if include != "" {
		fmt.Fprintf(&b, "--include=%s ", shQuote(include))
	}
	fmt.Fprintf(&b, "-- %s %s 2>/dev/null", shQuote(pattern), shQuote(path))
	return b.String()
}

// globScript changes into the root first so results come back relative,
// matches the pattern recursively (** included), and emits one JSON
// object per match. Structured output keeps filenames with spaces intact.
func globScript(pattern, root string) string {
	return fmt.Sprintf(`python3 - <<'PYEOF'
import base64, glob, json, os, sys
root = base64.b64decode("%s").decode("utf-8")
pattern = base64.b64decode("%s").decode("utf-8")
try:
    os.chdir(root)
except OSError:
    sys.exit(0)
for p in sorted(glob.glob(pattern, recursive=True)):
    try:
        st = os.stat(p)
    except OSError:
        continue
    print(json.dumps({"path": p, "size": st.st_size, "mtime": st.st_mtime, "is_dir": os.path.isdir(p)}))
PYEOF
`, b64(root), b64(pattern))
}

// listScript emits the immediate children of a directory in the same
// JSON line shape as globScript. A missing directory exits 0 with no
// output, matching the no-error contract of list.
func listScript(path string) string {
	return fmt.Sprintf(`python3 - <<'PYEOF'
import base64, json, os, sys
root = base64.b64decode("%s").decode("utf-8")
try:
    entries = sorted(os.scandir(root), key=lambda e: e.name)
except OSError:
    sys.exit(0)
for e in entries:
    try:
        st = e.stat()
    except OSError:
        continue
    print(json.dumps({"path": e.path, "size": st.st_size, "mtime": st.st_mtime, "is_dir": e.is_dir()}))
PYEOF
`, b64(path))
}
