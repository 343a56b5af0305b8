package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"playerstats/pkg/contracts/domain"
)

// ErrSourceUnavailable marks a failure to fetch or parse the player workbook.
var ErrSourceUnavailable = errors.New("source unavailable")

// Source produces the raw player table.
type Source interface {
	Fetch(ctx context.Context) (*domain.Table, error)
	// Describe names the source for logs and health output
	Describe() string
}

// HTTPSource downloads an .xlsx workbook from a fixed URL.
type HTTPSource struct {
	url      string
	client   *http.Client
	maxBytes int64
	logger   *slog.Logger
}

// NewHTTPSource creates a source for url. A zero maxBytes disables the size cap.
func NewHTTPSource(url string, timeout time.Duration, maxBytes int64, logger *slog.Logger) *HTTPSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPSource{
		url:      url,
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
		logger:   logger.With(slog.String("component", "http_source")),
	}
}

// Describe returns the workbook URL
func (s *HTTPSource) Describe() string {
	return s.url
}

// Fetch downloads and parses the workbook. Cancellation of ctx is returned
// as is; every other failure wraps ErrSourceUnavailable.
func (s *HTTPSource) Fetch(ctx context.Context) (*domain.Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrSourceUnavailable, err)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("download %s: %w", s.url, ctxErr)
		}
		return nil, fmt.Errorf("%w: download %s: %v", ErrSourceUnavailable, s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: download %s: unexpected status %d", ErrSourceUnavailable, s.url, resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if s.maxBytes > 0 {
		body = io.LimitReader(resp.Body, s.maxBytes)
	}

	table, err := ParseWorkbook(body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("read %s: %w", s.url, ctxErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	s.logger.InfoContext(ctx, "Workbook downloaded",
		slog.String("url", s.url),
		slog.Int("rows", table.Len()),
		slog.Int("columns", len(table.Columns)),
		slog.Duration("duration", time.Since(start)))

	return table, nil
}

// FileSource reads an .xlsx workbook from local disk.
type FileSource struct {
	path string
}

// NewFileSource creates a source for a workbook path
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Describe returns the workbook path
func (s *FileSource) Describe() string {
	return s.path
}

// Fetch parses the workbook
func (s *FileSource) Fetch(ctx context.Context) (*domain.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	table, err := ParseFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return table, nil
}
