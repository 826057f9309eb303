package logsheet

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/fieldcalc/fieldcalc/util"
	"github.com/fieldcalc/fieldcalc/util/request"
	"github.com/imdario/mergo"
	"github.com/itchyny/gojq"
)

// Poller waits for the text derived from an upload
type Poller struct {
	*request.Helper
	log       *util.Logger
	clock     clock.Clock
	status    string
	datastore string
	apiKey    string
	columns   []string
	query     *gojq.Code

	timeout, interval, errorInterval time.Duration
}

// NewPoller creates a poller for the status webhook and the datastore.
// Either may be empty. The jq expression extracts the text from the merged datastore row.
func NewPoller(log *util.Logger, status, datastore, apiKey string, columns []string, jq string, timeout, interval, errorInterval time.Duration) (*Poller, error) {
	parsed, err := gojq.Parse(jq)
	if err != nil {
		return nil, fmt.Errorf("invalid jq query: %w", err)
	}

	query, err := gojq.Compile(parsed)
	if err != nil {
		return nil, fmt.Errorf("invalid jq query: %w", err)
	}

	log.Redact(apiKey)

	return &Poller{
		Helper:        request.NewHelper(log),
		log:           log,
		clock:         clock.New(),
		status:        status,
		datastore:     strings.TrimSuffix(datastore, "/"),
		apiKey:        apiKey,
		columns:       columns,
		query:         query,
		timeout:       timeout,
		interval:      interval,
		errorInterval: errorInterval,
	}, nil
}

// Watch polls until a text is found, the deadline passes or ctx is cancelled.
// onResult is invoked exactly once.
func (p *Poller) Watch(ctx context.Context, ack Ack, onResult func(Result)) {
	onResult(p.watch(ctx, ack))
}

func (p *Poller) watch(ctx context.Context, ack Ack) Result {
	deadline := p.clock.Now().Add(p.timeout)

	for {
		if p.clock.Now().After(deadline) {
			return Result{JobID: ack.JobID, Err: ErrTimeout}
		}

		text, source, err := p.poll(ctx, ack)
		if err == nil && text != "" {
			p.log.DEBUG.Printf("job %s: result from %s", ack.JobID, source)
			return Result{JobID: ack.JobID, Text: text, Source: source}
		}

		wait := p.interval
		if err != nil {
			p.log.DEBUG.Printf("job %s: %v", ack.JobID, err)
			wait = p.errorInterval
		}

		select {
		case <-ctx.Done():
			return Result{JobID: ack.JobID, Err: ctx.Err()}
		case <-p.clock.After(wait):
		}
	}
}

// poll checks the status webhook for remote jobs and then the datastore
func (p *Poller) poll(ctx context.Context, ack Ack) (string, string, error) {
	var statusErr error

	if ack.Remote && p.status != "" {
		text, err := p.jobStatus(ctx, ack.JobID)
		if err == nil && text != "" {
			return text, "status", nil
		}
		statusErr = err
	}

	if p.datastore == "" {
		return "", "", statusErr
	}

	text, err := p.datastoreText(ctx)
	if err == nil && text != "" {
		return text, "datastore", nil
	}

	if err == nil {
		err = statusErr
	}

	return "", "", err
}

// jobStatus queries the status webhook. No content means the job is pending.
func (p *Poller) jobStatus(ctx context.Context, jobID string) (string, error) {
	uri := fmt.Sprintf("%s?jobId=%s", p.status, url.QueryEscape(jobID))

	req, err := request.NewWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return "", err
	}

	resp, err := p.Do(req)
	if err != nil {
		return "", err
	}

	if resp.StatusCode == http.StatusNoContent {
		resp.Body.Close()
		return "", nil
	}

	b, err := request.ReadBody(resp)

	return strings.TrimSpace(string(b)), err
}

// columnURI builds a query for the first row having a non-null value in column
func (p *Poller) columnURI(column string) string {
	quoted := url.QueryEscape(column)
	if strings.ContainsAny(column, " ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		quoted = url.QueryEscape(`"` + column + `"`)
	}

	return fmt.Sprintf("%s/rest/v1/job_results?select=%s&%s=not.is.null&limit=1", p.datastore, quoted, quoted)
}

// datastoreText merges the first row of every column query and extracts the text
func (p *Poller) datastoreText(ctx context.Context) (string, error) {
	ctx = util.WithRedactor(ctx, p.apiKey)

	headers := map[string]string{
		"apikey":        p.apiKey,
		"Authorization": "Bearer " + p.apiKey,
		"Accept":        request.JSONContent,
	}

	row := make(map[string]interface{})

	var errs []string
	for _, column := range p.columns {
		req, err := request.NewWithContext(ctx, http.MethodGet, p.columnURI(column), nil, headers)
		if err != nil {
			return "", err
		}

		var rows []map[string]interface{}
		if err := p.DoJSON(req, &rows); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", column, err))
			continue
		}

		if len(rows) > 0 {
			if err := mergo.Merge(&row, rows[0]); err != nil {
				return "", err
			}
		}
	}

	if len(errs) == len(p.columns) && len(errs) > 0 {
		return "", errors.New(strings.Join(errs, ", "))
	}

	return p.extract(row)
}

// extract returns the first non-empty string produced by the jq query
func (p *Poller) extract(row map[string]interface{}) (string, error) {
	iter := p.query.Run(row)
	for {
		v, ok := iter.Next()
		if !ok {
			return "", nil
		}

		switch v := v.(type) {
		case error:
			return "", v
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s, nil
			}
		case nil:
		default:
			return fmt.Sprint(v), nil
		}
	}
}
