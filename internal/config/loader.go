package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	ConfigDir  = "termchat"
	ConfigFile = "config.json"
)

// FileSystem is the part of the OS the loader reads from.
type FileSystem interface {
	UserHomeDir() (string, error)
	ReadFile(path string) ([]byte, error)
}

type osFS struct{}

func (osFS) UserHomeDir() (string, error)         { return os.UserHomeDir() }
func (osFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// Loader builds a Config from defaults and the user's config file.
type Loader struct {
	fs FileSystem
}

func NewLoader() *Loader {
	return &Loader{fs: osFS{}}
}

func NewLoaderWithFS(fsys FileSystem) *Loader {
	return &Loader{fs: fsys}
}

// Path returns ~/.config/termchat/config.json, or "" without a home directory.
func (l *Loader) Path() string {
	home, err := l.fs.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".config", ConfigDir, ConfigFile)
}

// Load overlays the config file on DefaultConfig and validates the result.
// A missing file or home directory yields the defaults.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	path := l.Path()
	if path == "" {
		return cfg, nil
	}
	data, err := l.fs.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	// Keys present in the file win, including zero values.
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads the configuration from the real filesystem.
func Load() (*Config, error) {
	return NewLoader().Load()
}
