package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCurrentFormat(t *testing.T) {
	data := []byte(`{"content":"alpha\nbeta\n","encoding":"utf-8","created_at":"2024-01-01T00:00:00Z","modified_at":"2024-01-02T00:00:00Z"}`)

	rec, err := DecodeFileRecord(data)
	require.NoError(t, err)

	assert.Equal(t, "alpha\nbeta\n", rec.Text())
	assert.Equal(t, EncodingUTF8, rec.Encoding)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), rec.CreatedAt.UTC())
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), rec.ModifiedAt.UTC())
}

func TestDecodeCurrentFormatBase64(t *testing.T) {
	// 0xff 0xfe is not valid UTF-8
	data := []byte(`{"content":"//4=","encoding":"base64","created_at":"2024-01-01T00:00:00Z","modified_at":"2024-01-01T00:00:00Z"}`)

	rec, err := DecodeFileRecord(data)
	require.NoError(t, err)

	raw, err := rec.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xfe}, raw)
}

func TestDecodeLegacyFormat(t *testing.T) {
	data := []byte(`{"content":["alpha beta","two three",""],"created_at":"2023-06-01T12:00:00Z","modified_at":"2023-06-01T12:00:00Z"}`)

	rec, err := DecodeFileRecord(data)
	require.NoError(t, err)

	assert.Equal(t, "alpha beta\ntwo three\n", rec.Text())
	assert.Equal(t, EncodingUTF8, rec.Encoding)
}

func TestDecodeMissingEncodingDefaultsToUTF8(t *testing.T) {
	data := []byte(`{"content":"plain","created_at":"2024-01-01T00:00:00Z","modified_at":"2024-01-01T00:00:00Z"}`)

	rec, err := DecodeFileRecord(data)
	require.NoError(t, err)
	assert.Equal(t, EncodingUTF8, rec.Encoding)
	assert.Equal(t, "plain", rec.Text())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)
	rec := NewFileRecord("hello\nworld\n", now)

	for _, format := range []RecordFormat{FormatCurrent, FormatLegacy} {
		data, err := EncodeFileRecord(rec, format)
		require.NoError(t, err)

		decoded, err := DecodeFileRecord(data)
		require.NoError(t, err)
		assert.Equal(t, rec.Text(), decoded.Text())
		assert.True(t, decoded.CreatedAt.Equal(now))
	}
}

func TestLegacyEncodeRejectsBinary(t *testing.T) {
	rec := NewFileRecord(string([]byte{0xff, 0x00, 0xfe}), time.Now())
	require.Equal(t, EncodingBase64, rec.Encoding)

	_, err := EncodeFileRecord(rec, FormatLegacy)
	assert.Error(t, err)

	_, err = EncodeFileRecord(rec, FormatCurrent)
	assert.NoError(t, err)
}

func TestNewFileRecordPicksEncoding(t *testing.T) {
	now := time.Now()

	text := NewFileRecord("plain text", now)
	assert.Equal(t, EncodingUTF8, text.Encoding)

	binary := NewFileRecord(string([]byte{0xc3, 0x28}), now)
	assert.Equal(t, EncodingBase64, binary.Encoding)
	raw, err := binary.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xc3, 0x28}, raw)
}

func TestSetTextRefreshesModified(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	edited := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	rec := NewFileRecord("before", created)
	rec.SetText("after", edited)

	assert.Equal(t, "after", rec.Text())
	assert.True(t, rec.CreatedAt.Equal(created))
	assert.True(t, rec.ModifiedAt.Equal(edited))
}

func TestRecordSize(t *testing.T) {
	rec := NewFileRecord("12345", time.Now())
	assert.Equal(t, int64(5), rec.Size())

	binary := NewFileRecord(string([]byte{0xff, 0xfe, 0xfd}), time.Now())
	assert.Equal(t, int64(3), binary.Size())
}
