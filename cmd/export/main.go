// Command export evaluates the player filters once and writes the resulting
// spreadsheet without starting a server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"playerstats/internal/app"
	"playerstats/internal/config"
	"playerstats/internal/dataprocessing"
	"playerstats/internal/infrastructure"
	"playerstats/internal/services"
	api "playerstats/pkg/contracts/api/v1"
)

// listFlag collects a repeatable string flag
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	if v = strings.TrimSpace(v); v != "" {
		*l = append(*l, v)
	}
	return nil
}

// boundFlag is a float flag that remembers whether it was set
type boundFlag struct {
	value *float64
}

func (b *boundFlag) String() string {
	if b.value == nil {
		return ""
	}
	return fmt.Sprint(*b.value)
}

func (b *boundFlag) Set(v string) error {
	var f float64
	if _, err := fmt.Sscan(v, &f); err != nil {
		return fmt.Errorf("not a number: %q", v)
	}
	b.value = &f
	return nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	out := fs.String("out", "", "output directory (defaults to the configured export dir)")
	format := fs.String("format", "", "xlsx | csv (defaults to the configured export format)")
	configFile := fs.String("config", "", "config file (defaults to the usual locations)")
	var ageMin, ageMax, usageMin, usageMax boundFlag
	var positions, competitions, teams listFlag
	fs.Var(&ageMin, "age-min", "minimum age")
	fs.Var(&ageMax, "age-max", "maximum age")
	fs.Var(&usageMin, "usage-min", "minimum usage")
	fs.Var(&usageMax, "usage-max", "maximum usage")
	fs.Var(&positions, "position", "primary position (repeatable)")
	fs.Var(&competitions, "competition", "competition (repeatable)")
	fs.Var(&teams, "team", "team (repeatable)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var (
		cfg *config.Config
		err error
	)
	if *configFile != "" {
		cfg, err = config.LoadFrom(*configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		return 1
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", slog.String("error", err.Error()))
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	if *out == "" {
		*out = cfg.Export.Dir
	}
	if *format == "" {
		*format = cfg.Export.Format
	}

	ctx := infrastructure.EnsureTraceID(context.Background())

	pipeline, err := app.NewPipeline(cfg.Pipeline, cfg.Filters)
	if err != nil {
		logger.ErrorContext(ctx, "Invalid pipeline configuration", slog.String("error", err.Error()))
		return 1
	}
	source, err := app.NewSource(ctx, cfg.Source, logger)
	if err != nil {
		logger.ErrorContext(ctx, "Invalid source configuration", slog.String("error", err.Error()))
		return 1
	}

	loader := dataprocessing.NewLoader(source, pipeline, logger)
	stats := services.NewStatsService(loader, pipeline, nil, nil, logger)

	spec := stats.Spec(api.FilterRequest{
		AgeMin:       ageMin.value,
		AgeMax:       ageMax.value,
		UsageMin:     usageMin.value,
		UsageMax:     usageMax.value,
		Positions:    positions,
		Competitions: competitions,
		Teams:        teams,
	})

	path, err := stats.ExportToDir(ctx, spec, *format, *out)
	if err != nil {
		if errors.Is(err, dataprocessing.ErrSourceUnavailable) {
			logger.ErrorContext(ctx, "Player data is unavailable",
				slog.String("source", source.Describe()),
				slog.String("error", err.Error()))
		} else {
			logger.ErrorContext(ctx, "Export failed", slog.String("error", err.Error()))
		}
		return 1
	}

	logger.InfoContext(ctx, "Export written",
		slog.String("path", path),
		slog.String("format", *format))
	fmt.Println(path)
	return 0
}
