package audit

import (
	"errors"
	"fmt"
	"sync"

	evbus "github.com/asaskevich/EventBus"
	"github.com/fieldcalc/fieldcalc/api"
	"github.com/fieldcalc/fieldcalc/util"
)

// Topic is the bus topic audit entries are published on
const Topic = "audit:entry"

// Dispatcher fans out audit entries to all subscribed sinks
type Dispatcher struct {
	mu     sync.Mutex
	log    *util.Logger
	bus    evbus.Bus
	reader api.AuditReader
	errs   []error
}

var _ api.AuditLogger = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher without sinks
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		log: util.NewLogger("audit"),
		bus: evbus.New(),
	}
}

// Subscribe adds a sink. The first sink implementing api.AuditReader serves Entries.
func (d *Dispatcher) Subscribe(name string, sink api.AuditLogger) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if r, ok := sink.(api.AuditReader); ok && d.reader == nil {
		d.reader = r
	}

	return d.bus.Subscribe(Topic, func(entry api.AuditEntry) {
		if err := sink.Log(entry); err != nil {
			d.log.ERROR.Printf("%s: %v", name, err)
			d.errs = append(d.errs, fmt.Errorf("%s: %w", name, err))
		}
	})
}

// Log implements the api.AuditLogger interface
func (d *Dispatcher) Log(entry api.AuditEntry) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.errs = nil
	d.bus.Publish(Topic, entry)

	switch len(d.errs) {
	case 0:
		return nil
	case 1:
		return d.errs[0]
	default:
		return fmt.Errorf("%w (and %d more)", d.errs[0], len(d.errs)-1)
	}
}

// ErrNoReader is returned if no subscribed sink can list entries
var ErrNoReader = errors.New("no readable audit log configured")

// Entries implements the api.AuditReader interface
func (d *Dispatcher) Entries() ([]api.AuditEntry, error) {
	d.mu.Lock()
	reader := d.reader
	d.mu.Unlock()

	if reader == nil {
		return nil, ErrNoReader
	}

	return reader.Entries()
}
