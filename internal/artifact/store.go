package artifact

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/pkg/browser"
)

// ErrClosed is returned by a Store after Close.
var ErrClosed = errors.New("artifact store is closed")

// Opener hands content to the system's default viewer.
type Opener interface {
	OpenReader(r io.Reader) error
	OpenFile(path string) error
}

// Clipboard receives copied artifact content.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemOpener opens artifacts with the platform's default browser.
type SystemOpener struct{}

// NewSystemOpener silences the launcher's own output, which would corrupt the TUI.
func NewSystemOpener() SystemOpener {
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
	return SystemOpener{}
}

func (SystemOpener) OpenReader(r io.Reader) error { return browser.OpenReader(r) }
func (SystemOpener) OpenFile(path string) error   { return browser.OpenFile(path) }

// SystemClipboard writes to the OS clipboard.
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return errors.New("clipboard is not supported on this system")
	}
	return clipboard.WriteAll(text)
}

// Action describes what Open did with an artifact.
type Action string

const (
	ActionViewed Action = "viewed"
	ActionSaved  Action = "saved"
)

// Opened is the result of handing an artifact off.
type Opened struct {
	Action Action
	// Path is set when the artifact was written to disk.
	Path string
}

// Store persists artifacts under a per-process temporary directory.
type Store struct {
	mu      sync.Mutex
	baseDir string
	dir     string
	closed  bool
	opener  Opener
	clip    Clipboard
}

// NewStore creates a store. The directory is created on first use under baseDir,
// or the system temp dir when baseDir is empty.
func NewStore(baseDir string, opener Opener, clip Clipboard) *Store {
	return &Store{baseDir: baseDir, opener: opener, clip: clip}
}

func (s *Store) ensureDir() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}
	if s.dir != "" {
		return s.dir, nil
	}
	dir, err := os.MkdirTemp(s.baseDir, "termchat-artifacts-")
	if err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}
	s.dir = dir
	return dir, nil
}

// PersistAndLocate writes the artifact to a unique file and returns its path.
func (s *Store) PersistAndLocate(a Artifact) (string, error) {
	dir, err := s.ensureDir()
	if err != nil {
		return "", err
	}

	f, err := os.CreateTemp(dir, fileStem(a)+"-*"+a.Extension())
	if err != nil {
		return "", fmt.Errorf("failed to create artifact file: %w", err)
	}
	if _, err := f.WriteString(a.Content); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	return f.Name(), nil
}

// Open hands the artifact to the viewer. HTML goes straight to the viewer,
// components are written out first, scripts are only written out.
func (s *Store) Open(a Artifact) (Opened, error) {
	switch a.Kind {
	case KindHTML:
		if err := s.opener.OpenReader(strings.NewReader(a.Content)); err != nil {
			return Opened{}, fmt.Errorf("failed to open artifact: %w", err)
		}
		return Opened{Action: ActionViewed}, nil
	case KindComponent:
		path, err := s.PersistAndLocate(a)
		if err != nil {
			return Opened{}, err
		}
		if err := s.opener.OpenFile(path); err != nil {
			return Opened{Path: path}, fmt.Errorf("failed to open artifact: %w", err)
		}
		return Opened{Action: ActionViewed, Path: path}, nil
	default:
		path, err := s.PersistAndLocate(a)
		if err != nil {
			return Opened{}, err
		}
		return Opened{Action: ActionSaved, Path: path}, nil
	}
}

// Copy puts the artifact's raw source on the clipboard.
func (s *Store) Copy(a Artifact) error {
	if err := s.clip.WriteAll(a.Source); err != nil {
		return fmt.Errorf("failed to copy artifact: %w", err)
	}
	return nil
}

// Dir returns the artifact directory, or "" if nothing was persisted yet.
func (s *Store) Dir() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir
}

// Close removes every persisted artifact.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.dir == "" {
		return nil
	}
	dir := s.dir
	s.dir = ""
	return os.RemoveAll(dir)
}

// fileStem builds a filesystem-safe prefix from the identifier.
func fileStem(a Artifact) string {
	stem := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, a.Identifier)
	if len(stem) > 48 {
		stem = stem[:48]
	}
	if stem == "" {
		stem = "artifact"
	}
	return stem
}
