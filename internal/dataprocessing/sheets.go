package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"playerstats/pkg/contracts/domain"
)

// SheetsSource reads the player table from a Google Sheets range.
type SheetsSource struct {
	service       *sheets.Service
	spreadsheetID string
	readRange     string
	logger        *slog.Logger
}

// NewSheetsSource creates a Sheets-backed source. A credentials file takes
// precedence over an API key; with neither, application default credentials
// are used.
func NewSheetsSource(ctx context.Context, spreadsheetID, readRange, apiKey, credentialsFile string, logger *slog.Logger) (*SheetsSource, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	var opts []option.ClientOption
	switch {
	case credentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	case apiKey != "":
		opts = append(opts, option.WithAPIKey(apiKey))
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &SheetsSource{
		service:       service,
		spreadsheetID: spreadsheetID,
		readRange:     readRange,
		logger:        logger.With(slog.String("component", "sheets_source")),
	}, nil
}

// Describe returns the spreadsheet and range
func (s *SheetsSource) Describe() string {
	return fmt.Sprintf("sheets:%s!%s", s.spreadsheetID, s.readRange)
}

// Fetch reads the range and converts it to a table
func (s *SheetsSource) Fetch(ctx context.Context) (*domain.Table, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.readRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("read sheet %s: %w", s.spreadsheetID, ctxErr)
		}
		return nil, fmt.Errorf("%w: read sheet %s: %v", ErrSourceUnavailable, s.spreadsheetID, err)
	}

	table, err := TableFromRows(valuesToRows(resp.Values))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	s.logger.InfoContext(ctx, "Sheet range loaded",
		slog.String("range", s.readRange),
		slog.Int("rows", table.Len()))
	return table, nil
}

// valuesToRows converts the loosely typed Sheets payload into string rows.
func valuesToRows(values [][]interface{}) [][]string {
	rows := make([][]string, len(values))
	for i, raw := range values {
		row := make([]string, len(raw))
		for j, cell := range raw {
			if cell == nil {
				continue
			}
			switch v := cell.(type) {
			case string:
				row[j] = v
			case float64:
				row[j] = domain.Number(v).String()
			default:
				row[j] = fmt.Sprint(v)
			}
		}
		rows[i] = row
	}
	return rows
}
