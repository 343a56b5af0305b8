package dataprocessing

import (
	"fmt"
	"sort"
	"strings"

	"playerstats/pkg/contracts/domain"
)

// OBVMetrics is the metric set of the on-ball value dashboard
var OBVMetrics = []string{
	"OBV", "Key Passes", "Shots", "xG", "Ball Recoveries",
	"Opposition Half Ball Recoveries", "Deep Completions",
	"Open Play Final Third Passes", "xGBuildup",
	"Defensive Action OBV", "Dribble & Carry OBV",
	"Pass OBV", "Shot OBV",
}

// Config parameterizes one dashboard variant.
type Config struct {
	Name              string
	Metrics           []string
	GroupColumn       string
	CompetitionColumn string
	// DisplayColumns is the requested projection; empty means
	// DefaultDisplayColumns(GroupColumn, Metrics).
	DisplayColumns []string
	AgeSlider      SliderBounds
	UsageSlider    SliderBounds
}

var (
	defaultAgeSlider   = SliderBounds{Min: 15, Max: 35, Step: 1, Default: [2]int{15, 35}}
	defaultUsageSlider = SliderBounds{Min: 0, Max: 140, Step: 1, Default: [2]int{0, 140}}
)

var presets = map[string]Config{
	"obv": {
		Metrics:           OBVMetrics,
		CompetitionColumn: domain.ColumnCompetition,
	},
	"league": {
		Metrics:           OBVMetrics,
		CompetitionColumn: domain.ColumnLeague,
	},
	"pressing": {
		Metrics:           append(append([]string{}, OBVMetrics...), "PAdj Pressures"),
		CompetitionColumn: domain.ColumnLeague,
	},
}

// PresetNames lists the built-in variants in sorted order
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset returns the named built-in variant with defaults applied.
func Preset(name string) (Config, error) {
	p, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Config{}, fmt.Errorf("unknown pipeline variant %q (known: %s)", name, strings.Join(PresetNames(), ", "))
	}
	p.Name = strings.ToLower(strings.TrimSpace(name))
	p.Metrics = append([]string{}, p.Metrics...)
	return p.withDefaults(), nil
}

// withDefaults fills unset fields
func (c Config) withDefaults() Config {
	if c.GroupColumn == "" {
		c.GroupColumn = domain.ColumnTeam
	}
	if c.CompetitionColumn == "" {
		c.CompetitionColumn = domain.ColumnCompetition
	}
	if len(c.DisplayColumns) == 0 {
		c.DisplayColumns = DefaultDisplayColumns(c.GroupColumn, c.Metrics)
	}
	if c.AgeSlider == (SliderBounds{}) {
		c.AgeSlider = defaultAgeSlider
	}
	if c.UsageSlider == (SliderBounds{}) {
		c.UsageSlider = defaultUsageSlider
	}
	return c
}

// DefaultDisplayColumns returns the identity columns, with groupColumn in the
// second slot, followed by the raw, team total and contribution column of
// each metric.
func DefaultDisplayColumns(groupColumn string, metrics []string) []string {
	if groupColumn == "" {
		groupColumn = domain.ColumnTeam
	}
	cols := []string{
		domain.ColumnName, groupColumn, domain.ColumnAge,
		domain.ColumnPrimaryPosition, domain.ColumnUsage,
	}
	for _, m := range metrics {
		cols = append(cols, m, domain.TeamColumn(m), domain.ContributionColumn(m))
	}
	return cols
}

// Pipeline binds a Config to the derive, filter, project and format stages.
type Pipeline struct {
	cfg Config
}

// NewPipeline creates a pipeline; unset config fields take their defaults.
func NewPipeline(cfg Config) *Pipeline {
	return &Pipeline{cfg: cfg.withDefaults()}
}

// Config returns the effective configuration
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Derive appends the derived columns to a freshly loaded table.
func (p *Pipeline) Derive(table *domain.Table) *domain.Table {
	return Derive(table, p.cfg)
}

// FilterAndProject filters a derived table, projects the display columns and
// formats them for presentation.
func (p *Pipeline) FilterAndProject(table *domain.Table, spec FilterSpec) *domain.Table {
	filtered := Filter(table, spec, p.cfg)
	return Format(Project(filtered, p.cfg.DisplayColumns))
}

// Options returns the filter choices observed in a derived table.
func (p *Pipeline) Options(table *domain.Table) FilterOptions {
	return Options(table, p.cfg)
}

// TeamOptions returns the team choices for the selected competitions.
func (p *Pipeline) TeamOptions(table *domain.Table, competitions []string) []string {
	return TeamOptions(table, competitions, p.cfg)
}

// DefaultSpec returns a spec with the slider defaults and no set restrictions.
func (p *Pipeline) DefaultSpec() FilterSpec {
	return FilterSpec{
		Age:   p.cfg.AgeSlider.Range(),
		Usage: p.cfg.UsageSlider.Range(),
	}
}
