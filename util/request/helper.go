package request

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fieldcalc/fieldcalc/util"
)

// Timeout is the default request timeout used by the Helper
var Timeout = 10 * time.Second

// Helper provides utility primitives
type Helper struct {
	*http.Client
	log *util.Logger
}

// NewHelper creates http helper for simplified PUT GET logic
func NewHelper(log *util.Logger) *Helper {
	r := &Helper{
		Client: &http.Client{
			Timeout:   Timeout,
			Transport: NewTripper(log, http.DefaultTransport),
		},
		log: log,
	}

	return r
}

// DoBody executes HTTP request and returns the response body
func (r *Helper) DoBody(req *http.Request) ([]byte, error) {
	resp, err := r.Do(req)
	var body []byte
	if err == nil {
		body, err = ReadBody(resp)
	}
	return body, err
}

// decodeJSON reads HTTP response and decodes JSON body if error is nil
func decodeJSON(resp *http.Response, res interface{}) error {
	if err := ResponseError(resp); err != nil {
		_ = json.NewDecoder(resp.Body).Decode(res)
		return err
	}

	return json.NewDecoder(resp.Body).Decode(res)
}

// DoJSON executes HTTP request and decodes JSON response.
// It returns a StatusError on response codes other than HTTP 2xx.
func (r *Helper) DoJSON(req *http.Request, res interface{}) error {
	resp, err := r.Do(req)
	if err == nil {
		defer resp.Body.Close()
		err = decodeJSON(resp, res)
	}
	return err
}

// ReadBody reads HTTP response and returns error on response codes other than HTTP 2xx
func ReadBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return b, NewStatusError(resp)
	}

	return b, nil
}

// StatusError indicates unsuccessful http response
type StatusError struct {
	resp *http.Response
}

// NewStatusError create new StatusError for given response
func NewStatusError(resp *http.Response) *StatusError {
	return &StatusError{resp: resp}
}

func (e StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d (%s)", e.resp.StatusCode, http.StatusText(e.resp.StatusCode))
}

// StatusCode returns the response's status code
func (e StatusError) StatusCode() int {
	return e.resp.StatusCode
}

// HasStatus returns true if the response's status code matches any of the given codes
func (e StatusError) HasStatus(codes ...int) bool {
	for _, code := range codes {
		if e.resp.StatusCode == code {
			return true
		}
	}
	return false
}

// ResponseError turns an HTTP status code into an error
func ResponseError(resp *http.Response) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return NewStatusError(resp)
	}
	return nil
}
