package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Sink persists rendered exports on disk under a base directory.
type Sink struct {
	baseDir string
}

// NewSink ensures the base directory exists and returns a handle.
func NewSink(baseDir string) (*Sink, error) {
	if baseDir == "" {
		baseDir = "./exports"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create exports directory: %w", err)
	}
	return &Sink{baseDir: baseDir}, nil
}

// Write renders the dataset and stores it as <prefix>-<timestamp>.<ext>,
// returning the full path.
func (s *Sink) Write(prefix string, renderer Renderer, data Dataset, at time.Time) (string, error) {
	raw, err := renderer.Render(data)
	if err != nil {
		return "", err
	}
	return s.Store(prefix, renderer.Extension(), raw, at)
}

// Store writes already-rendered bytes as <prefix>-<timestamp>.<ext>.
func (s *Sink) Store(prefix, ext string, raw []byte, at time.Time) (string, error) {
	name := fmt.Sprintf("%s-%s.%s", prefix, at.Format("20060102-150405"), ext)
	path := filepath.Join(s.baseDir, name)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}
	return path, nil
}

// CleanupOlderThan removes exports older than the TTL and returns their names.
func (s *Sink) CleanupOlderThan(ttl time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-ttl)
	var deleted []string
	err := filepath.WalkDir(s.baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		rel, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			rel = path
		}
		deleted = append(deleted, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cleanup exports: %w", err)
	}
	return deleted, nil
}
