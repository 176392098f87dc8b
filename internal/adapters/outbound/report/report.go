package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/stackshot/stackshot/internal/domain"
)

// FileWriter implements domain.ReportWriter with JSON file storage. Writes go
// through a temp file and a rename under an advisory lock, so readers never
// observe a partial report.
type FileWriter struct{}

func New() *FileWriter {
	return &FileWriter{}
}

func (w *FileWriter) Write(path string, r *domain.RunReport) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding: %w", domain.ErrReportWrite, err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrReportWrite, err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("%w: locking %s: %w", domain.ErrReportWrite, path, err)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(path + ".lock")
	}()

	if err := atomicWrite(path, data); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrReportWrite, err)
	}
	return nil
}

// Read loads a previously written report.
func (w *FileWriter) Read(path string) (*domain.RunReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var r domain.RunReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &r, nil
}

func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	committed = true
	return nil
}
