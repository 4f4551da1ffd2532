// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/nebrenner/basketball-play-author/internal/util"
	"github.com/nebrenner/basketball-play-author/pkg/core"
)

// ExportPlay writes p to the output directory and returns the file path.
// The file name is the slugged play name plus the export timestamp.
func (b *Backend) ExportPlay(p *core.Play, at time.Time) (string, error) {
	ext := "json"
	if b.cfg.CompressOutput {
		ext = "json.gz"
	}
	outputPath := filepath.Join(b.cfg.OutputDir, util.ExportFileName(p.Meta.Name, at, ext))

	// Ensure output directory exists
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	var err error
	if b.cfg.CompressOutput {
		err = writeGzipJSON(outputPath, p)
	} else {
		err = writeJSON(outputPath, p)
	}
	if err != nil {
		return "", err
	}

	b.mu.Lock()
	b.lastExportPath = outputPath
	b.mu.Unlock()
	return outputPath, nil
}

// GetExportedFilePath returns the path of the last export, or "".
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// ReadExport reads a file written by ExportPlay, transparently
// decompressing .gz files.
func ReadExport(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if filepath.Ext(path) == ".gz" {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	}
	return io.ReadAll(r)
}

func writeJSON(path string, data *core.Play) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func writeGzipJSON(path string, data *core.Play) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()

	encoder := json.NewEncoder(gzWriter)
	return encoder.Encode(data)
}
