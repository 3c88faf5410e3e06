package utils

import (
	"bytes"
	"io"
	"net/http"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const payload = `{"bestMatches":[]}`

func encode(t *testing.T, encoding string) []byte {
	t.Helper()

	var buf bytes.Buffer
	var w io.WriteCloser
	var err error

	switch encoding {
	case "gzip":
		w = gzip.NewWriter(&buf)
	case "deflate":
		w, err = flate.NewWriter(&buf, flate.DefaultCompression)
	case "br":
		w = brotli.NewWriter(&buf)
	case "zstd":
		w, err = zstd.NewWriter(&buf)
	default:
		return []byte(payload)
	}
	require.NoError(t, err)

	_, err = w.Write([]byte(payload))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestReadBody(t *testing.T) {
	for _, encoding := range []string{"", "gzip", "deflate", "br", "zstd", "identity"} {
		t.Run(encoding, func(t *testing.T) {
			resp := &http.Response{
				Header: http.Header{},
				Body:   io.NopCloser(bytes.NewReader(encode(t, encoding))),
			}
			if encoding != "" {
				resp.Header.Set("Content-Encoding", encoding)
			}

			body, err := ReadBody(resp)
			require.NoError(t, err)
			assert.Equal(t, payload, string(body))
		})
	}
}

func TestReadBody_BadGzip(t *testing.T) {
	resp := &http.Response{
		Header: http.Header{"Content-Encoding": []string{"gzip"}},
		Body:   io.NopCloser(bytes.NewReader([]byte("not gzip"))),
	}

	_, err := ReadBody(resp)
	assert.Error(t, err)
}

func TestSetDefaultHeaders(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "https://example.com", nil)
	require.NoError(t, err)

	SetDefaultHeaders(req)

	assert.Equal(t, UserAgent, req.Header.Get("User-Agent"))
	assert.Contains(t, req.Header.Get("Accept-Encoding"), "br")
}
