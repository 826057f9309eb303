package logsheet

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fieldcalc/fieldcalc/util"
)

// Service uploads logsheet images and reports the derived text asynchronously
type Service struct {
	log    *util.Logger
	client *Client
	poller *Poller

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewFromConfig creates a logsheet service from generic config
func NewFromConfig(other map[string]interface{}) (*Service, error) {
	cc := struct {
		Webhook, Status   string
		Datastore, APIKey string
		Columns           []string
		JQ                string
		Attempts          uint
		Delay             time.Duration
		Timeout, Interval time.Duration
		ErrorInterval     time.Duration
	}{
		Columns:       []string{"text_result"},
		JQ:            ".text_result",
		Attempts:      3,
		Delay:         time.Second,
		Timeout:       10 * time.Minute,
		Interval:      2 * time.Second,
		ErrorInterval: 3 * time.Second,
	}

	if err := util.DecodeOther(other, &cc); err != nil {
		return nil, err
	}

	if cc.Webhook == "" {
		return nil, errors.New("missing webhook")
	}

	if cc.Status == "" && cc.Datastore == "" {
		return nil, errors.New("missing status webhook or datastore")
	}

	log := util.NewLogger("logsheet")

	poller, err := NewPoller(log, cc.Status, cc.Datastore, cc.APIKey, cc.Columns, cc.JQ, cc.Timeout, cc.Interval, cc.ErrorInterval)
	if err != nil {
		return nil, err
	}

	return NewService(log, NewClient(log, cc.Webhook, cc.Status, cc.Attempts, cc.Delay), poller), nil
}

// NewService creates a logsheet service
func NewService(log *util.Logger, client *Client, poller *Poller) *Service {
	ctx, cancel := context.WithCancel(context.Background())

	return &Service{
		log:    log,
		client: client,
		poller: poller,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Submit uploads both images and returns once the webhook accepted them.
// onResult is invoked exactly once from a separate goroutine when the result is known.
func (s *Service) Submit(ctx context.Context, transformer, feeder Image, onResult func(Result)) (Ack, error) {
	ack, err := s.client.Upload(ctx, transformer, feeder)
	if err != nil {
		return ack, err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.poller.Watch(s.ctx, ack, onResult)
	}()

	return ack, nil
}

// Online checks if the automation webhook is reachable
func (s *Service) Online(ctx context.Context) error {
	return s.client.Online(ctx)
}

// Close cancels all pending jobs and waits for their callbacks
func (s *Service) Close() {
	s.cancel()
	s.wg.Wait()
}
