package logsheet

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fieldcalc/fieldcalc/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	transformer = Image{Name: "132.jpg", Data: []byte("132kv")}
	feeder      = Image{Name: "33.jpg", Data: []byte("33kv")}
)

func testClient(uri string) *Client {
	return NewClient(util.NewLogger("test"), uri, uri, 3, time.Millisecond)
}

func TestUploadForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		for field, want := range map[string]string{"file132": "132kv", "file33": "33kv"} {
			f, _, err := r.FormFile(field)
			require.NoError(t, err)
			b, _ := io.ReadAll(f)
			assert.Equal(t, want, string(b))
		}

		assert.JSONEq(t, `{"file132":"132KV","file33":"33KV"}`, r.FormValue("labels"))
		assert.NotEmpty(t, r.FormValue("timestamp"))

		_, _ = w.Write([]byte(`{"jobId":"job-1"}`))
	}))
	defer srv.Close()

	ack, err := testClient(srv.URL).Upload(context.Background(), transformer, feeder)
	require.NoError(t, err)
	assert.Equal(t, Ack{JobID: "job-1", Remote: true}, ack)
}

func TestUploadRetry(t *testing.T) {
	var calls int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("accepted"))
	}))
	defer srv.Close()

	ack, err := testClient(srv.URL).Upload(context.Background(), transformer, feeder)
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	// non-json response gets a local job id
	assert.False(t, ack.Remote)
	assert.NotEmpty(t, ack.JobID)
}

func TestUploadNoRetryOnClientError(t *testing.T) {
	var calls int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Upload(context.Background(), transformer, feeder)
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestUploadRequiresTwoImages(t *testing.T) {
	_, err := testClient("http://localhost").Upload(context.Background(), transformer, Image{})
	assert.Error(t, err)
}

func testPoller(t *testing.T, status, datastore string, columns []string, jq string, timeout time.Duration) *Poller {
	p, err := NewPoller(util.NewLogger("test"), status, datastore, "secret", columns, jq, timeout, time.Millisecond, time.Millisecond)
	require.NoError(t, err)
	return p
}

func TestPollStatus(t *testing.T) {
	var calls int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "job-1", r.URL.Query().Get("jobId"))

		switch atomic.AddInt32(&calls, 1) {
		case 1:
			w.WriteHeader(http.StatusNoContent)
		case 2:
			w.WriteHeader(http.StatusInternalServerError)
		default:
			_, _ = w.Write([]byte("  Today33 1234.5\n"))
		}
	}))
	defer srv.Close()

	p := testPoller(t, srv.URL, "", nil, ".text_result", time.Minute)

	var res []Result
	p.Watch(context.Background(), Ack{JobID: "job-1", Remote: true}, func(r Result) {
		res = append(res, r)
	})

	require.Len(t, res, 1)
	assert.NoError(t, res[0].Err)
	assert.Equal(t, "Today33 1234.5", res[0].Text)
	assert.Equal(t, "status", res[0].Source)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestPollDatastore(t *testing.T) {
	var calls int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/job_results", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Query().Get("select") {
		case "text_result":
			if atomic.AddInt32(&calls, 1) < 2 {
				_, _ = w.Write([]byte(`[]`))
				return
			}
			_, _ = w.Write([]byte(`[{"text_result":null}]`))
		case `"AI ANALYSIS"`:
			if atomic.LoadInt32(&calls) < 2 {
				_, _ = w.Write([]byte(`[]`))
				return
			}
			_, _ = w.Write([]byte(`[{"AI ANALYSIS":"net difference within tolerance"}]`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	p := testPoller(t, "", srv.URL, []string{"text_result", "AI ANALYSIS"}, `.text_result // ."AI ANALYSIS"`, time.Minute)

	var res Result
	p.Watch(context.Background(), Ack{JobID: "local"}, func(r Result) { res = r })

	assert.NoError(t, res.Err)
	assert.Equal(t, "local", res.JobID)
	assert.Equal(t, "net difference within tolerance", res.Text)
	assert.Equal(t, "datastore", res.Source)
}

func TestPollTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	p := testPoller(t, srv.URL, "", nil, ".", 20*time.Millisecond)

	var res Result
	p.Watch(context.Background(), Ack{JobID: "job-1", Remote: true}, func(r Result) { res = r })

	assert.True(t, errors.Is(res.Err, ErrTimeout))
	assert.Equal(t, ErrTimeout.Error(), res.Error())
}

func TestPollCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	p := testPoller(t, srv.URL, "", nil, ".", time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var res Result
	p.Watch(ctx, Ack{JobID: "job-1", Remote: true}, func(r Result) { res = r })

	assert.True(t, errors.Is(res.Err, context.Canceled))
}

func TestInvalidQuery(t *testing.T) {
	_, err := NewPoller(util.NewLogger("test"), "", "", "", nil, ".[", time.Minute, time.Second, time.Second)
	assert.Error(t, err)
}

func TestServiceSubmit(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jobId":"job-7"}`))
	})
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("done"))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	svc, err := NewFromConfig(map[string]interface{}{
		"webhook":  srv.URL + "/upload",
		"status":   srv.URL + "/status",
		"interval": "1ms",
	})
	require.NoError(t, err)
	defer svc.Close()

	done := make(chan Result, 1)
	ack, err := svc.Submit(context.Background(), transformer, feeder, func(r Result) { done <- r })
	require.NoError(t, err)
	assert.Equal(t, "job-7", ack.JobID)

	select {
	case res := <-done:
		assert.NoError(t, res.Err)
		assert.Equal(t, "job-7", res.JobID)
		assert.Equal(t, "done", res.Text)
	case <-time.After(5 * time.Second):
		t.Fatal("no result")
	}
}

func TestNewFromConfig(t *testing.T) {
	_, err := NewFromConfig(map[string]interface{}{})
	assert.Error(t, err)

	_, err = NewFromConfig(map[string]interface{}{"webhook": "http://localhost"})
	assert.Error(t, err)

	_, err = NewFromConfig(map[string]interface{}{"webhook": "http://localhost", "datastore": "http://localhost", "unknown": true})
	assert.Error(t, err)
}
