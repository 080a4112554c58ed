package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/wanpwang1981-ux/ubike-easy-checker/internal/domain"
)

// ErrEmptySnapshot is returned when asked to persist zero stations. The
// previous snapshot is kept so the front end never sees an empty map.
var ErrEmptySnapshot = errors.New("refusing to write empty station snapshot")

// Store persists the merged station list as a JSON file.
// It implements pipeline.Loader.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore creates a Store writing to path.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Path returns the output file path.
func (s *Store) Path() string { return s.path }

// Load replaces the output file with stations. The file is written to a
// temporary sibling and renamed into place, so readers see either the old or
// the new snapshot.
func (s *Store) Load(_ context.Context, stations []domain.Station) error {
	if len(stations) == 0 {
		return ErrEmptySnapshot
	}

	data, err := Encode(stations)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}

	s.logger.Info("snapshot written", "path", s.path, "count", len(stations), "bytes", len(data))
	return nil
}

// Encode renders stations as 4-space indented JSON with a trailing newline.
// HTML escaping is off so CJK text and characters like & stay readable.
func Encode(stations []domain.Station) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(stations); err != nil {
		return nil, fmt.Errorf("encode stations: %w", err)
	}
	return buf.Bytes(), nil
}

// Read loads a snapshot previously written by Load.
func (s *Store) Read() ([]domain.Station, error) {
	return ReadFile(s.path)
}

// ReadFile decodes a stations file.
func ReadFile(path string) ([]domain.Station, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var stations []domain.Station
	if err := json.Unmarshal(data, &stations); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return stations, nil
}

// CheckReadiness reports whether a snapshot exists for the preview page.
func (s *Store) CheckReadiness(_ context.Context) error {
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("no station snapshot at %s: %w", s.path, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("station snapshot %s is empty", s.path)
	}
	return nil
}
