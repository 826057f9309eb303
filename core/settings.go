package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/fieldcalc/fieldcalc/api"
	"github.com/fieldcalc/fieldcalc/util"
)

// Settings persists UI preferences to a json file
type Settings struct {
	mu   sync.Mutex
	log  *util.Logger
	path string
	data settingsData
}

type settingsData struct {
	Theme api.Theme `json:"theme"`
}

// NewSettings creates a preference store backed by path. An empty path keeps settings in memory.
func NewSettings(path string) *Settings {
	s := &Settings{
		log:  util.NewLogger("settings"),
		path: path,
		data: settingsData{Theme: api.ThemeDefault},
	}

	if err := s.load(); err != nil {
		s.log.ERROR.Printf("load settings: %v", err)
	}

	return s
}

func (s *Settings) load() error {
	if s.path == "" {
		return nil
	}

	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	var data settingsData
	if err := json.Unmarshal(b, &data); err != nil {
		return err
	}

	if theme, ok := api.ThemeString(string(data.Theme)); ok {
		s.data.Theme = theme
	} else {
		s.log.WARN.Printf("ignoring invalid theme: %s", data.Theme)
	}

	return nil
}

func (s *Settings) save() error {
	if s.path == "" {
		return nil
	}

	b, err := json.Marshal(s.data)
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, b, 0o644)
}

// Theme returns the selected theme
func (s *Settings) Theme() api.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Theme
}

// SetTheme selects and persists the theme
func (s *Settings) SetTheme(theme string) error {
	t, ok := api.ThemeString(theme)
	if !ok {
		return fmt.Errorf("invalid theme: %s", theme)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.Theme = t
	s.log.DEBUG.Printf("theme: %s", t)

	return s.save()
}
