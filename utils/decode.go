package utils

import (
	"fmt"
	"io"
	"net/http"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// ReadBody reads the whole response body, undoing the Content-Encoding the
// server applied. Unknown encodings are read as-is.
func ReadBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader

	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		defer gzipReader.Close()
		reader = gzipReader
	case "deflate":
		flateReader := flate.NewReader(resp.Body)
		defer flateReader.Close()
		reader = flateReader
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "zstd":
		zstdReader, err := zstd.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("create zstd reader: %w", err)
		}
		defer zstdReader.Close()
		reader = zstdReader
	default:
		reader = resp.Body
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}
