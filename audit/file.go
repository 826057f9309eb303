package audit

import (
	"encoding/json"
	"errors"
	"os"
	"sync"

	"github.com/fieldcalc/fieldcalc/api"
	"github.com/fieldcalc/fieldcalc/util"
)

// File appends audit entries to a json array on disk
type File struct {
	mu   sync.Mutex
	log  *util.Logger
	path string
}

func init() {
	registry.Add("file", NewFileFromConfig)
}

// NewFileFromConfig creates a file audit log from generic config
func NewFileFromConfig(other map[string]interface{}) (api.AuditLogger, error) {
	cc := struct {
		Path string
	}{
		Path: "audit-log.json",
	}

	if err := util.DecodeOther(other, &cc); err != nil {
		return nil, err
	}

	return NewFile(cc.Path), nil
}

// NewFile creates a file audit log
func NewFile(path string) *File {
	return &File{
		log:  util.NewLogger("audit"),
		path: path,
	}
}

func (f *File) read() ([]api.AuditEntry, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var res []api.AuditEntry
	err = json.Unmarshal(b, &res)

	return res, err
}

// Log implements the api.AuditLogger interface
func (f *File) Log(entry api.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	if err != nil {
		return err
	}

	b, err := json.Marshal(append(entries, entry))
	if err != nil {
		return err
	}

	f.log.TRACE.Printf("%s: %s (%.1f -> %.1f)", f.path, entry.Directive, entry.OriginalHighReading, entry.AdjustedHighReading)

	return os.WriteFile(f.path, b, 0o644)
}

// Entries implements the api.AuditReader interface
func (f *File) Entries() ([]api.AuditEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read()
}
