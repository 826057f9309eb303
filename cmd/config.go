package cmd

import (
	"errors"
	"fmt"

	"github.com/fieldcalc/fieldcalc/api"
	"github.com/fieldcalc/fieldcalc/audit"
	"github.com/fieldcalc/fieldcalc/core"
	"github.com/fieldcalc/fieldcalc/logsheet"
	"github.com/imdario/mergo"
	"github.com/spf13/viper"
)

type config struct {
	URI        string
	Log        string
	Levels     map[string]string
	Calculator calculatorConfig
	Settings   string
	Audit      []audit.Config
	Logsheet   map[string]interface{}
}

type calculatorConfig struct {
	Rounding string
}

var defaults = config{
	URI: "0.0.0.0:7080",
	Log: "error",
	Calculator: calculatorConfig{
		Rounding: "none",
	},
	Settings: "settings.json",
	Audit: []audit.Config{
		{Type: "file", Other: map[string]interface{}{"path": "audit-log.json"}},
	},
}

// loadConfig reads the config file if present and fills unset values from defaults
func loadConfig(conf *config) error {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed reading config file: %w", err)
		}
	}

	if err := viper.UnmarshalExact(conf); err != nil {
		return fmt.Errorf("failed parsing config file: %w", err)
	}

	return mergo.Merge(conf, defaults)
}

// closer is implemented by audit sinks holding connections
type closer interface {
	Close()
}

// configureAudit subscribes all configured sinks to a dispatcher
func configureAudit(configs []audit.Config) (*audit.Dispatcher, func(), error) {
	dispatcher := audit.NewDispatcher()

	var closers []closer
	shutdown := func() {
		for _, c := range closers {
			c.Close()
		}
	}

	for i, cc := range configs {
		sink, err := audit.NewFromConfig(cc.Type, cc.Other)
		if err != nil {
			shutdown()
			return nil, nil, fmt.Errorf("audit[%d]: %w", i, err)
		}

		if c, ok := sink.(closer); ok {
			closers = append(closers, c)
		}

		if err := dispatcher.Subscribe(fmt.Sprintf("%s[%d]", cc.Type, i), sink); err != nil {
			shutdown()
			return nil, nil, err
		}
	}

	return dispatcher, shutdown, nil
}

// configureCalculator creates the calculator with the configured rounding policy
func configureCalculator(cc calculatorConfig, sink api.AuditLogger) (*core.Calculator, error) {
	rounding, err := core.RoundingString(cc.Rounding)
	if err != nil {
		return nil, err
	}

	return core.NewCalculator(rounding, sink), nil
}

// configureLogsheet creates the logsheet service. It is nil if not configured.
func configureLogsheet(other map[string]interface{}) (*logsheet.Service, error) {
	if len(other) == 0 {
		return nil, nil
	}

	return logsheet.NewFromConfig(other)
}
