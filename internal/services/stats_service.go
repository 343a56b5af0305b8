package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"playerstats/internal/dataprocessing"
	apierrors "playerstats/internal/errors"
	"playerstats/internal/exporter"
	"playerstats/internal/infrastructure"
	api "playerstats/pkg/contracts/api/v1"
	"playerstats/pkg/contracts/domain"
)

// TableLoader provides the shared derived player table
type TableLoader interface {
	Table(ctx context.Context) (*domain.Table, error)
	Loaded() (bool, time.Time)
}

// StatsService answers filter, option and export requests
type StatsService struct {
	loader   TableLoader
	pipeline *dataprocessing.Pipeline
	metrics  *infrastructure.BusinessMetrics
	tracer   trace.Tracer
	logger   *slog.Logger
}

// Export is a serialized spreadsheet ready to be sent or saved
type Export struct {
	Filename    string
	ContentType string
	Format      string
	Rows        int
	Data        []byte
}

// NewStatsService creates the service. Nil metrics, tracer or logger fall back
// to no-op or default implementations.
func NewStatsService(loader TableLoader, pipeline *dataprocessing.Pipeline, metrics *infrastructure.BusinessMetrics, tracer trace.Tracer, logger *slog.Logger) *StatsService {
	if metrics == nil {
		metrics = infrastructure.NoopBusinessMetrics()
	}
	if tracer == nil {
		tracer = otel.Tracer(infrastructure.MeterName)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsService{
		loader:   loader,
		pipeline: pipeline,
		metrics:  metrics,
		tracer:   tracer,
		logger:   logger.With(slog.String("service", "stats")),
	}
}

// Pipeline returns the pipeline variant the service evaluates
func (s *StatsService) Pipeline() *dataprocessing.Pipeline {
	return s.pipeline
}

// Spec converts a request into a filter spec. Absent bounds take the slider
// defaults.
func (s *StatsService) Spec(req api.FilterRequest) dataprocessing.FilterSpec {
	spec := s.pipeline.DefaultSpec()
	if req.AgeMin != nil {
		spec.Age.Min = *req.AgeMin
	}
	if req.AgeMax != nil {
		spec.Age.Max = *req.AgeMax
	}
	if req.UsageMin != nil {
		spec.Usage.Min = *req.UsageMin
	}
	if req.UsageMax != nil {
		spec.Usage.Max = *req.UsageMax
	}
	spec.Positions = req.Positions
	spec.Competitions = req.Competitions
	spec.Teams = req.Teams
	return spec
}

// Options returns the selectable filter values
func (s *StatsService) Options(ctx context.Context) (dataprocessing.FilterOptions, error) {
	ctx, span := s.tracer.Start(ctx, "stats.options")
	defer span.End()

	table, err := s.table(ctx)
	if err != nil {
		return dataprocessing.FilterOptions{}, err
	}
	return s.pipeline.Options(table), nil
}

// TeamOptions returns the teams offered for the selected competitions
func (s *StatsService) TeamOptions(ctx context.Context, competitions []string) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "stats.team_options",
		trace.WithAttributes(attribute.StringSlice("competitions", competitions)))
	defer span.End()

	table, err := s.table(ctx)
	if err != nil {
		return nil, err
	}
	return s.pipeline.TeamOptions(table, competitions), nil
}

// Query filters, projects and formats the player table
func (s *StatsService) Query(ctx context.Context, spec dataprocessing.FilterSpec) (*domain.Table, error) {
	ctx, span := s.tracer.Start(ctx, "stats.query")
	defer span.End()

	return s.evaluate(ctx, "query", spec)
}

// Export evaluates spec and serializes the result in format ("" means xlsx)
func (s *StatsService) Export(ctx context.Context, spec dataprocessing.FilterSpec, format string) (*Export, error) {
	ctx, span := s.tracer.Start(ctx, "stats.export", trace.WithAttributes(attribute.String("format", format)))
	defer span.End()

	w, err := exporter.ForFormat(format)
	if err != nil {
		return nil, apierrors.NewAppValidationError(err.Error()).WithContext("format", format)
	}
	formatName := w.Format()

	table, err := s.evaluate(ctx, "export", spec)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := w.Write(&buf, table); err != nil {
		infrastructure.RecordExport(ctx, s.metrics, formatName, err)
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "Export failed",
			slog.String("format", formatName),
			slog.String("error", err.Error()))
		return nil, apierrors.NewExportError("failed to write spreadsheet", err).WithContext("format", formatName)
	}
	infrastructure.RecordExport(ctx, s.metrics, formatName, nil)

	s.logger.InfoContext(ctx, "Export generated",
		slog.String("format", formatName),
		slog.Int("rows", table.Len()),
		slog.Int("bytes", buf.Len()))

	return &Export{
		Filename:    w.Filename(),
		ContentType: w.ContentType(),
		Format:      formatName,
		Rows:        table.Len(),
		Data:        buf.Bytes(),
	}, nil
}

// ExportToDir evaluates spec and writes the spreadsheet into dir, returning its path
func (s *StatsService) ExportToDir(ctx context.Context, spec dataprocessing.FilterSpec, format, dir string) (string, error) {
	w, err := exporter.ForFormat(format)
	if err != nil {
		return "", apierrors.NewAppValidationError(err.Error()).WithContext("format", format)
	}

	table, err := s.evaluate(ctx, "export", spec)
	if err != nil {
		return "", err
	}

	path, err := exporter.WriteFile(dir, w, table)
	infrastructure.RecordExport(ctx, s.metrics, w.Format(), err)
	if err != nil {
		return "", apierrors.NewExportError("failed to write spreadsheet", err).WithContext("dir", dir)
	}
	return path, nil
}

func (s *StatsService) evaluate(ctx context.Context, operation string, spec dataprocessing.FilterSpec) (*domain.Table, error) {
	table, err := s.table(ctx)
	if err != nil {
		return nil, err
	}

	result := s.pipeline.FilterAndProject(table, spec)
	infrastructure.RecordPipelineRun(ctx, s.metrics, operation, result.Len())

	s.logger.DebugContext(ctx, "Filters evaluated",
		slog.String("operation", operation),
		slog.Any("age_range", spec.Age),
		slog.Any("usage_range", spec.Usage),
		slog.Int("positions", len(spec.Positions)),
		slog.Int("competitions", len(spec.Competitions)),
		slog.Int("teams", len(spec.Teams)),
		slog.Int("rows", result.Len()))
	return result, nil
}

// table returns the shared derived table, mapping load failures to SOURCE errors
func (s *StatsService) table(ctx context.Context) (*domain.Table, error) {
	if s.pipeline == nil {
		return nil, ErrNoPipeline
	}

	loaded, _ := s.loader.Loaded()
	start := time.Now()
	table, err := s.loader.Table(ctx)
	if !loaded {
		source := "loader"
		if d, ok := s.loader.(interface{ Source() dataprocessing.Source }); ok {
			source = d.Source().Describe()
		}
		infrastructure.RecordSourceLoad(ctx, s.metrics, source, time.Since(start), err)
	}
	if err == nil {
		return table, nil
	}

	infrastructure.RecordError(ctx, err)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	if errors.Is(err, dataprocessing.ErrSourceUnavailable) {
		return nil, apierrors.NewSourceError("player data is unavailable", err)
	}
	return nil, apierrors.NewSourceError(fmt.Sprintf("failed to load player data: %v", err), err)
}
