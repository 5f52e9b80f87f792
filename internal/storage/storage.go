package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/capetown-events/internal/event"
)

// Storage handles persistence of run outputs
type Storage struct {
	dataDir string
}

// New creates a new Storage instance rooted at dataDir
func New(dataDir string) (*Storage, error) {
	if dataDir == "" {
		dataDir = "."
	}

	dataDir, err := ExpandPath(dataDir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// ExpandPath expands a leading ~/ to the home directory
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}

// Path resolves an output name against the storage directory
func (s *Storage) Path(name string) (string, error) {
	name, err := ExpandPath(name)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(name) {
		return name, nil
	}
	return filepath.Join(s.dataDir, name), nil
}

// SaveReport writes the scraper report as two-space indented JSON with
// non-ASCII and HTML characters left unescaped
func (s *Storage) SaveReport(name string, report *event.RunReport) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}

	return s.write(name, buf.Bytes())
}

// LoadReport reads a report previously written by SaveReport
func (s *Storage) LoadReport(name string) (*event.RunReport, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}

	var report event.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parsing report: %w", err)
	}
	if report.Events == nil {
		report.Events = make([]*event.SiteDateExtraction, 0)
	}

	return &report, nil
}

// SaveCalendar writes an iCalendar document
func (s *Storage) SaveCalendar(name, ics string) (string, error) {
	return s.write(name, []byte(ics))
}

// write replaces the named file atomically and returns its resolved path
func (s *Storage) write(name string, data []byte) (string, error) {
	path, err := s.Path(name)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return "", fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("replacing %s: %w", path, err)
	}

	return path, nil
}
