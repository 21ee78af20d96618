package transmission

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jkaberg/obd-diag/internal/report"
	"github.com/sirupsen/logrus"
)

// FileExporter writes each report to a JSON file in a directory.
type FileExporter struct {
	dir    string
	pretty bool
	logger *logrus.Logger
}

// NewFileExporter creates an exporter writing into dir, which is created on
// first use.
func NewFileExporter(dir string, pretty bool, logger *logrus.Logger) *FileExporter {
	return &FileExporter{dir: dir, pretty: pretty, logger: logger}
}

// Filename returns the default file name for r: diagnostic_YYYYMMDD_HHMMSS.json
// in the report's own time.
func Filename(r *report.DiagnosticReport) string {
	return fmt.Sprintf("diagnostic_%s.json", r.Metadata.Timestamp.Format("20060102_150405"))
}

// Marshal encodes r, indented with two spaces when pretty is set.
func Marshal(r *report.DiagnosticReport, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(r, "", "  ")
	}
	return json.Marshal(r)
}

// ExportString returns r as a JSON string.
func ExportString(r *report.DiagnosticReport, pretty bool) (string, error) {
	data, err := Marshal(r, pretty)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return string(data), nil
}

// Export writes r to name inside the exporter's directory; an empty name uses
// Filename. A missing ".json" extension is appended. It returns the path
// written.
func (e *FileExporter) Export(r *report.DiagnosticReport, name string) (string, error) {
	if name == "" {
		name = Filename(r)
	}
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", e.dir, err)
	}

	data, err := Marshal(r, e.pretty)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	path := filepath.Join(e.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("failed to rename %s: %w", tmp, err)
	}

	e.logger.WithFields(logrus.Fields{
		"path": path,
		"size": len(data),
	}).Debug("Exported diagnostic report")
	return path, nil
}

// Transmit exports r under its default file name.
func (e *FileExporter) Transmit(ctx context.Context, r *report.DiagnosticReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := e.Export(r, "")
	return err
}

// IsConnected always returns true; the file system has no connection.
func (e *FileExporter) IsConnected() bool { return true }
