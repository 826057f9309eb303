package logsheet

import (
	"errors"
)

// ErrTimeout is reported if no result arrived before the deadline
var ErrTimeout = errors.New("timed out waiting for result")

// Image is an uploaded logsheet photograph
type Image struct {
	Name string
	Data []byte
}

// Ack acknowledges an accepted upload
type Ack struct {
	JobID string `json:"jobId"`
	// Remote is true if the webhook assigned the job id and reports status for it
	Remote bool `json:"remote"`
}

// Result is the text derived from an upload
type Result struct {
	JobID  string `json:"jobId"`
	Text   string `json:"text,omitempty"`
	Source string `json:"source,omitempty"`
	Err    error  `json:"-"`
}

// Error returns the result's error message, if any
func (r Result) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
