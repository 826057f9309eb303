package logsheet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/benbjohnson/clock"
	"github.com/fieldcalc/fieldcalc/util"
	"github.com/fieldcalc/fieldcalc/util/request"
	"github.com/google/uuid"
)

// labels identify the metering point of each uploaded image
var labels = map[string]string{
	"file132": "132KV",
	"file33":  "33KV",
}

// Client uploads logsheet images to the automation webhook
type Client struct {
	*request.Helper
	log     *util.Logger
	clock   clock.Clock
	webhook string
	status  string
	retry   []retry.Option
}

// NewClient creates a webhook client
func NewClient(log *util.Logger, webhook, status string, attempts uint, delay time.Duration) *Client {
	return &Client{
		Helper:  request.NewHelper(log),
		log:     log,
		clock:   clock.New(),
		webhook: webhook,
		status:  status,
		retry: []retry.Option{
			retry.Attempts(attempts),
			retry.Delay(delay),
			retry.DelayType(retry.BackOffDelay),
			retry.LastErrorOnly(true),
			retry.RetryIf(retryable),
		},
	}
}

// body builds the multipart form for both images
func (c *Client) body(transformer, feeder Image) ([]byte, string, error) {
	buf := new(bytes.Buffer)
	mw := multipart.NewWriter(buf)

	for _, part := range []struct {
		field string
		img   Image
	}{
		{"file132", transformer},
		{"file33", feeder},
	} {
		w, err := mw.CreateFormFile(part.field, part.img.Name)
		if err == nil {
			_, err = w.Write(part.img.Data)
		}
		if err != nil {
			return nil, "", err
		}
	}

	lb, err := json.Marshal(labels)
	if err == nil {
		err = mw.WriteField("timestamp", c.clock.Now().UTC().Format(time.RFC3339))
	}
	if err == nil {
		err = mw.WriteField("labels", string(lb))
	}
	if err == nil {
		err = mw.Close()
	}

	return buf.Bytes(), mw.FormDataContentType(), err
}

// Upload posts both images to the webhook. The transformer image is sent first.
func (c *Client) Upload(ctx context.Context, transformer, feeder Image) (Ack, error) {
	if len(transformer.Data) == 0 || len(feeder.Data) == 0 {
		return Ack{}, errors.New("two images required")
	}

	body, contentType, err := c.body(transformer, feeder)
	if err != nil {
		return Ack{}, err
	}

	var b []byte

	err = retry.Do(func() error {
		req, err := request.NewWithContext(ctx, http.MethodPost, c.webhook, bytes.NewReader(body), map[string]string{
			"Content-Type": contentType,
		})
		if err == nil {
			b, err = c.DoBody(req)
		}

		if err != nil {
			c.log.DEBUG.Printf("upload: %v", err)
		}

		return err
	}, append(c.retry, retry.Context(ctx))...)
	if err != nil {
		return Ack{}, fmt.Errorf("upload failed: %w", err)
	}

	ack := Ack{JobID: jobID(b)}
	if ack.JobID != "" {
		ack.Remote = true
	} else {
		ack.JobID = uuid.New().String()
	}

	c.log.DEBUG.Printf("upload accepted: job %s (remote: %v)", ack.JobID, ack.Remote)

	return ack, nil
}

// jobID extracts an optional job id from the webhook response
func jobID(b []byte) string {
	var res struct {
		JobID interface{} `json:"jobId"`
	}

	if err := json.Unmarshal(b, &res); err != nil {
		return ""
	}

	if s, ok := res.JobID.(string); ok {
		return strings.TrimSpace(s)
	}

	return ""
}

// retryable excludes client errors which will not succeed on retry
func retryable(err error) bool {
	var se *request.StatusError
	if errors.As(err, &se) {
		return !se.HasStatus(http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusRequestEntityTooLarge)
	}
	return true
}

// Online checks if the status webhook is reachable
func (c *Client) Online(ctx context.Context) error {
	if c.status == "" {
		return errors.New("status webhook not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := request.NewWithContext(ctx, http.MethodGet, c.status, nil)
	if err != nil {
		return err
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return request.NewStatusError(resp)
	}

	return nil
}
