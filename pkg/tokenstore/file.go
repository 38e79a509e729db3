package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const fileVersion = "1.0"

// DefaultFileName is the session file created inside the config directory.
const DefaultFileName = "session.yaml"

type fileDocument struct {
	Version string `yaml:"version"`
	Session Record `yaml:"session"`
}

// File stores the record as YAML on disk, readable only by the owner.
type File struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewFile returns a file store writing to path. An empty path resolves to
// ~/.config/mapofpi/session.yaml.
func NewFile(path string) (*File, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &File{path: path, now: time.Now}, nil
}

// DefaultPath returns ~/.config/mapofpi/session.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "mapofpi", DefaultFileName), nil
}

// Path returns the file location.
func (f *File) Path() string {
	return f.path
}

func (f *File) Save(_ context.Context, rec Record) error {
	if err := validate(rec); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	data, err := yaml.Marshal(fileDocument{Version: fileVersion, Session: rec})
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	// write next to the target and rename so readers never see a partial file
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

func (f *File) Load(_ context.Context) (Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("read token record: %w", err)
	}

	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Record{}, errors.Join(ErrCorruptedRecord, err)
	}
	if doc.Session.Token == "" || doc.Session.Expired(f.now()) {
		return Record{}, ErrNotFound
	}
	return doc.Session, nil
}

func (f *File) Delete(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}
