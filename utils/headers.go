// Package utils holds HTTP helpers shared by the provider clients.
package utils

import "net/http"

// UserAgent is sent by every outbound request, browser sessions included.
const UserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36"

// SetDefaultHeaders sets the headers the data providers expect from a browser.
func SetDefaultHeaders(req *http.Request) {
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br, zstd")
	req.Header.Set("Cache-Control", "no-cache")
}
