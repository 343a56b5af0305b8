package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"playerstats/pkg/contracts/domain"
)

// BaseFilename is the fixed name of every export, without extension
const BaseFilename = "filtered_player_stats"

// Supported export formats
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// Writer serializes a formatted table
type Writer interface {
	Write(out io.Writer, table *domain.Table) error
	Format() string
	Filename() string
	ContentType() string
}

// ForFormat returns the writer for a format name. An empty name selects xlsx.
func ForFormat(format string) (Writer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatXLSX:
		return NewXLSXWriter(), nil
	case FormatCSV:
		return NewCSVWriter(), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteFile writes table into dir using the writer's fixed filename and
// returns the resulting path. An existing file is replaced.
func WriteFile(dir string, w Writer, table *domain.Table) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	fullPath := filepath.Join(dir, w.Filename())
	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if err := w.Write(file, table); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	slog.Info("Export written",
		slog.String("full_path", fullPath),
		slog.Int("record_count", table.Len()))
	return fullPath, nil
}
