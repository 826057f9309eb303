package audit

import (
	"sync"

	"github.com/fieldcalc/fieldcalc/api"
	"github.com/fieldcalc/fieldcalc/util"
)

// Memory keeps the most recent audit entries
type Memory struct {
	mu      sync.Mutex
	size    int
	entries []api.AuditEntry
}

func init() {
	registry.Add("memory", NewMemoryFromConfig)
}

// NewMemoryFromConfig creates a memory audit log from generic config
func NewMemoryFromConfig(other map[string]interface{}) (api.AuditLogger, error) {
	cc := struct {
		Size int
	}{
		Size: 100,
	}

	if err := util.DecodeOther(other, &cc); err != nil {
		return nil, err
	}

	return NewMemory(cc.Size), nil
}

// NewMemory creates a memory audit log holding up to size entries
func NewMemory(size int) *Memory {
	if size < 1 {
		size = 1
	}
	return &Memory{size: size}
}

// Log implements the api.AuditLogger interface
func (m *Memory) Log(entry api.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, entry)
	if over := len(m.entries) - m.size; over > 0 {
		m.entries = append([]api.AuditEntry(nil), m.entries[over:]...)
	}

	return nil
}

// Entries implements the api.AuditReader interface
func (m *Memory) Entries() ([]api.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]api.AuditEntry(nil), m.entries...), nil
}
