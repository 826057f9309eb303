package audit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fieldcalc/fieldcalc/api"
)

type sinkRegistry map[string]func(map[string]interface{}) (api.AuditLogger, error)

func (r sinkRegistry) Add(name string, factory func(map[string]interface{}) (api.AuditLogger, error)) {
	if _, exists := r[name]; exists {
		panic(fmt.Sprintf("cannot register duplicate audit type: %s", name))
	}
	r[name] = factory
}

func (r sinkRegistry) Get(name string) (func(map[string]interface{}) (api.AuditLogger, error), error) {
	factory, exists := r[name]
	if !exists {
		return nil, fmt.Errorf("invalid audit type: %s", name)
	}
	return factory, nil
}

var registry = make(sinkRegistry)

// Config is the audit sink config
type Config struct {
	Type  string
	Other map[string]interface{} `mapstructure:",remain"`
}

// NewFromConfig creates an audit sink from config
func NewFromConfig(typ string, other map[string]interface{}) (api.AuditLogger, error) {
	factory, err := registry.Get(strings.ToLower(typ))
	if err != nil {
		return nil, err
	}

	sink, err := factory(other)
	if err != nil {
		return nil, fmt.Errorf("cannot create audit type '%s': %w", typ, err)
	}

	return sink, nil
}

// Types returns the registered audit sink types
func Types() []string {
	res := make([]string, 0, len(registry))
	for typ := range registry {
		res = append(res, typ)
	}
	sort.Strings(res)
	return res
}
