// Package store persists projects as JSON or YAML files.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/riordanpawley/planboard/internal/domain"
	"gopkg.in/yaml.v3"
)

// Format is the on-disk encoding of a project file
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnsupportedFormat is returned for paths that are neither JSON nor YAML
var ErrUnsupportedFormat = errors.New("unsupported project file format")

// FormatFor picks the encoding from the file extension
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Decode parses a project. A project without statuses gets the default set.
func Decode(data []byte, format Format) (domain.Project, error) {
	var p domain.Project
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &p)
	case FormatYAML:
		err = yaml.Unmarshal(data, &p)
	default:
		return p, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return domain.Project{}, err
	}
	if len(p.Configuration.Statuses) == 0 {
		p.Configuration.Statuses = domain.DefaultStatuses()
	}
	if p.Tasks == nil {
		p.Tasks = []domain.Task{}
	}
	return p, nil
}

// Encode serializes a project in the given format
func Encode(p domain.Project, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// FileStore loads and saves one project file
type FileStore struct {
	path   string
	format Format
	logger *slog.Logger
}

// NewFileStore creates a store for path. The format follows the extension.
func NewFileStore(path string, logger *slog.Logger) (*FileStore, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, &domain.StoreError{Op: "open", Path: path, Err: err}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{
		path:   path,
		format: format,
		logger: logger,
	}, nil
}

// Path returns the project file path
func (s *FileStore) Path() string {
	return s.path
}

// Format returns the encoding used for the file
func (s *FileStore) Format() Format {
	return s.format
}

// Exists reports whether the project file is present
func (s *FileStore) Exists() bool {
	info, err := os.Stat(s.path)
	return err == nil && !info.IsDir()
}

// Load reads the project from disk
func (s *FileStore) Load() (domain.Project, error) {
	s.logger.Debug("loading project", "path", s.path)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Project{}, &domain.StoreError{Op: "load", Path: s.path, Message: "project file does not exist", Err: domain.ErrNotFound}
		}
		return domain.Project{}, &domain.StoreError{Op: "load", Path: s.path, Err: err}
	}

	p, err := Decode(data, s.format)
	if err != nil {
		return domain.Project{}, &domain.StoreError{Op: "load", Path: s.path, Message: "failed to parse " + string(s.format), Err: err}
	}

	s.logger.Debug("loaded project", "path", s.path, "tasks", len(p.Tasks))
	return p, nil
}

// Save writes the project atomically: a temp file in the same directory
// is renamed over the target, so readers never see a partial file.
func (s *FileStore) Save(p domain.Project) error {
	data, err := Encode(p, s.format)
	if err != nil {
		return &domain.StoreError{Op: "save", Path: s.path, Message: "failed to encode", Err: err}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &domain.StoreError{Op: "save", Path: s.path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return &domain.StoreError{Op: "save", Path: s.path, Err: err}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &domain.StoreError{Op: "save", Path: s.path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return &domain.StoreError{Op: "save", Path: s.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &domain.StoreError{Op: "save", Path: s.path, Err: err}
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return &domain.StoreError{Op: "save", Path: s.path, Err: err}
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return &domain.StoreError{Op: "save", Path: s.path, Err: err}
	}

	s.logger.Debug("saved project", "path", s.path, "tasks", len(p.Tasks))
	return nil
}

// LoadOrInit loads the project, creating an empty one named name when the
// file does not exist yet
func (s *FileStore) LoadOrInit(id, name string) (domain.Project, error) {
	p, err := s.Load()
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Project{}, err
	}

	s.logger.Info("creating project file", "path", s.path)
	p = domain.NewProject(id, name)
	p.Tasks = []domain.Task{}
	if err := s.Save(p); err != nil {
		return domain.Project{}, err
	}
	return p, nil
}
