package request

import (
	"context"
	"io"
	"net/http"
	"strings"
)

const (
	// JSONContent is the JSON content type
	JSONContent = "application/json"
)

// NewWithContext builds a request bound to ctx and applies all given header maps
func NewWithContext(ctx context.Context, method, uri string, data io.Reader, headers ...map[string]string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, uri, data)
	if err == nil {
		for _, headers := range headers {
			for k, v := range headers {
				req.Header.Set(k, v)
			}
		}
	}

	return req, err
}

// IsJSON reports whether the content type header denotes JSON
func IsJSON(h http.Header) bool {
	return strings.HasPrefix(strings.ToLower(h.Get("Content-Type")), JSONContent)
}
