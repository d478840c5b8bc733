package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/funtimes-lightstream/internal/settings"
)

// File stores each key as <dir>/<key>.yaml.
type File struct {
	mu  sync.Mutex
	dir string
}

type fileDoc struct {
	Settings []settings.Record `yaml:"settings"`
}

func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create settings dir: %w", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, filepath.Base(key)+".yaml")
}

func (f *File) Store(key string, records []settings.Record) error {
	b, err := yaml.Marshal(fileDoc{Settings: records})
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	// Write to a temp file first so a crash never leaves a half-written document.
	p := f.path(key)
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

func (f *File) Retrieve(key string) ([]settings.Record, error) {
	f.mu.Lock()
	b, err := os.ReadFile(f.path(key))
	f.mu.Unlock()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", settings.ErrNoData, key)
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	var doc fileDoc
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return doc.Settings, nil
}
