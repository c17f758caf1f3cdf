package protocol

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bytedance/sonic"
)

// Encoding names the at-rest content encoding of a FileRecord.
type Encoding string

const (
	EncodingUTF8   Encoding = "utf-8"
	EncodingBase64 Encoding = "base64"
)

// RecordFormat selects the at-rest wire shape written by EncodeFileRecord.
// Decoding always accepts both formats so old persisted sessions keep
// loading.
type RecordFormat int

const (
	// FormatCurrent stores content as one string plus an explicit
	// encoding tag.
	FormatCurrent RecordFormat = iota
	// FormatLegacy stores content as an ordered list of lines with no
	// encoding tag. Retained for snapshots written by older sessions.
	FormatLegacy
)

// FileRecord is one stored file: its content in the tagged encoding plus
// creation and modification timestamps.
type FileRecord struct {
	Content    string    `json:"content"`
	Encoding   Encoding  `json:"encoding"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// NewFileRecord builds a record from raw text, choosing base64 storage
// when the text is not valid UTF-8.
func NewFileRecord(content string, now time.Time) *FileRecord {
	r := &FileRecord{CreatedAt: now, ModifiedAt: now}
	r.setContent(content)
	return r
}

// Text returns the decoded content. A record whose base64 payload is
// corrupt decodes best-effort to the raw stored string.
func (r *FileRecord) Text() string {
	if r.Encoding == EncodingBase64 {
		raw, err := base64.StdEncoding.DecodeString(r.Content)
		if err != nil {
			return r.Content
		}
		return string(raw)
	}
	return r.Content
}

// Bytes returns the decoded content as raw bytes.
func (r *FileRecord) Bytes() ([]byte, error) {
	if r.Encoding == EncodingBase64 {
		return base64.StdEncoding.DecodeString(r.Content)
	}
	return []byte(r.Content), nil
}

// SetText replaces the content in place and refreshes ModifiedAt.
func (r *FileRecord) SetText(content string, now time.Time) {
	r.setContent(content)
	r.ModifiedAt = now
}

// Size reports the decoded content length in bytes, best-effort.
func (r *FileRecord) Size() int64 {
	raw, err := r.Bytes()
	if err != nil {
		return int64(len(r.Content))
	}
	return int64(len(raw))
}

func (r *FileRecord) setContent(content string) {
	if utf8.ValidString(content) {
		r.Content = content
		r.Encoding = EncodingUTF8
		return
	}
	r.Content = base64.StdEncoding.EncodeToString([]byte(content))
	r.Encoding = EncodingBase64
}

// recordWire tolerates both at-rest shapes: content as a string (current)
// or as a list of lines (legacy, no encoding tag).
type recordWire struct {
	Content    json.RawMessage `json:"content"`
	Encoding   Encoding        `json:"encoding,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	ModifiedAt time.Time       `json:"modified_at"`
}

type legacyWire struct {
	Content    []string  `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// DecodeFileRecord parses either at-rest format.
func DecodeFileRecord(data []byte) (*FileRecord, error) {
	var wire recordWire
	if err := sonic.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode file record: %w", err)
	}

	r := &FileRecord{CreatedAt: wire.CreatedAt, ModifiedAt: wire.ModifiedAt}

	trimmed := strings.TrimSpace(string(wire.Content))
	if strings.HasPrefix(trimmed, "[") {
		var lines []string
		if err := sonic.Unmarshal(wire.Content, &lines); err != nil {
			return nil, fmt.Errorf("decode legacy file record: %w", err)
		}
		r.Content = strings.Join(lines, "\n")
		r.Encoding = EncodingUTF8
		return r, nil
	}

	if err := sonic.Unmarshal(wire.Content, &r.Content); err != nil {
		return nil, fmt.Errorf("decode file record content: %w", err)
	}
	r.Encoding = wire.Encoding
	if r.Encoding == "" {
		r.Encoding = EncodingUTF8
	}
	return r, nil
}

// EncodeFileRecord serializes a record in the requested format. The
// legacy format has no encoding tag and therefore cannot carry base64
// content.
func EncodeFileRecord(r *FileRecord, format RecordFormat) ([]byte, error) {
	switch format {
	case FormatLegacy:
		if r.Encoding == EncodingBase64 {
			return nil, fmt.Errorf("legacy record format cannot represent base64 content")
		}
		return sonic.Marshal(legacyWire{
			Content:    strings.Split(r.Content, "\n"),
			CreatedAt:  r.CreatedAt,
			ModifiedAt: r.ModifiedAt,
		})
	default:
		return sonic.Marshal(r)
	}
}
