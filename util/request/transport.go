package request

import (
	"net/http"
	"net/http/httputil"
	"strings"

	"github.com/fieldcalc/fieldcalc/util"
)

// Tripper is a http.RoundTripper that logs requests and responses at trace level
type Tripper struct {
	log  *util.Logger
	base http.RoundTripper
}

// NewTripper creates a logging round tripper wrapping base
func NewTripper(log *util.Logger, base http.RoundTripper) http.RoundTripper {
	return &Tripper{
		log:  log,
		base: base,
	}
}

const maxDump = 1024

// RoundTrip implements http.RoundTripper. Secrets carried by the request context are redacted.
func (r *Tripper) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	if body, err := httputil.DumpRequestOut(req, IsJSON(req.Header)); err == nil {
		r.log.TRACE.Println(truncate(util.RedactString(ctx, strings.TrimSpace(string(body)))))
	}

	resp, err := r.base.RoundTrip(req)

	if resp != nil {
		if body, err := httputil.DumpResponse(resp, IsJSON(resp.Header)); err == nil {
			r.log.TRACE.Println(truncate(util.RedactString(ctx, strings.TrimSpace(string(body)))))
		}
	}

	return resp, err
}

func truncate(s string) string {
	if len(s) > maxDump {
		return s[:maxDump] + "..."
	}
	return s
}
