package app

import (
	"context"
	"fmt"
	"log/slog"

	"playerstats/internal/config"
	"playerstats/internal/dataprocessing"
)

// NewSource builds the player data source selected by cfg.Kind
func NewSource(ctx context.Context, cfg config.SourceConfig, logger *slog.Logger) (dataprocessing.Source, error) {
	switch cfg.Kind {
	case config.SourceXLSX, "":
		return dataprocessing.NewHTTPSource(cfg.URL, cfg.Timeout, cfg.MaxBytes, logger), nil
	case config.SourceFile:
		return dataprocessing.NewFileSource(cfg.Path), nil
	case config.SourceSheets:
		src, err := dataprocessing.NewSheetsSource(ctx, cfg.SpreadsheetID, cfg.Range, cfg.APIKey, cfg.CredentialsFile, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create sheets source: %w", err)
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
}

// NewPipeline builds the pipeline variant from the preset, the configured
// overrides and the slider bounds.
func NewPipeline(pc config.PipelineConfig, fc config.FiltersConfig) (*dataprocessing.Pipeline, error) {
	variant, err := dataprocessing.Preset(pc.Preset)
	if err != nil {
		return nil, err
	}

	if len(pc.Metrics) > 0 {
		variant.Metrics = pc.Metrics
		// Recomputed from the new metric list.
		variant.DisplayColumns = nil
	}
	if pc.GroupColumn != "" {
		variant.GroupColumn = pc.GroupColumn
		variant.DisplayColumns = nil
	}
	if pc.CompetitionColumn != "" {
		variant.CompetitionColumn = pc.CompetitionColumn
	}
	variant.AgeSlider = sliderBounds(fc.Age)
	variant.UsageSlider = sliderBounds(fc.Usage)

	return dataprocessing.NewPipeline(variant), nil
}

func sliderBounds(s config.SliderConfig) dataprocessing.SliderBounds {
	return dataprocessing.SliderBounds{
		Min:     s.Min,
		Max:     s.Max,
		Step:    s.Step,
		Default: [2]int{s.DefaultMin, s.DefaultMax},
	}
}
