package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"playerstats/internal/shared/testutil"
	"playerstats/pkg/contracts/domain"
)

func TestFilter(t *testing.T) {
	table := derivedFixture(t)
	cfg := obvConfig(t)
	defaults := NewPipeline(cfg).DefaultSpec()

	tests := []struct {
		name string
		spec func() FilterSpec
		want []string
	}{
		{
			name: "defaults drop out-of-range age and undefined usage",
			spec: func() FilterSpec { return defaults },
			want: []string{"A. Silva", "B. Jones", "D. Park"},
		},
		{
			name: "single age",
			spec: func() FilterSpec {
				s := defaults
				s.Age = Range{Min: 30, Max: 30}
				return s
			},
			want: []string{"B. Jones"},
		},
		{
			name: "usage bounds are inclusive",
			spec: func() FilterSpec {
				s := defaults
				s.Usage = Range{Min: 50, Max: 100}
				return s
			},
			want: []string{"A. Silva", "B. Jones"},
		},
		{
			name: "inverted range matches nothing",
			spec: func() FilterSpec {
				s := defaults
				s.Age = Range{Min: 40, Max: 20}
				return s
			},
			want: []string{},
		},
		{
			name: "position",
			spec: func() FilterSpec {
				s := defaults
				s.Positions = []string{"Centre Forward", "Goalkeeper"}
				return s
			},
			want: []string{"A. Silva", "D. Park"},
		},
		{
			name: "competition",
			spec: func() FilterSpec {
				s := defaults
				s.Competitions = []string{"Premier"}
				return s
			},
			want: []string{"A. Silva", "B. Jones"},
		},
		{
			name: "team",
			spec: func() FilterSpec {
				s := defaults
				s.Teams = []string{"Beta United"}
				return s
			},
			want: []string{"D. Park"},
		},
		{
			name: "ALL disables a selection",
			spec: func() FilterSpec {
				s := defaults
				s.Positions = []string{"Goalkeeper", "all"}
				return s
			},
			want: []string{"A. Silva", "B. Jones", "D. Park"},
		},
		{
			name: "unknown value",
			spec: func() FilterSpec {
				s := defaults
				s.Teams = []string{"Nowhere"}
				return s
			},
			want: []string{},
		},
		{
			name: "wide ranges keep every defined row",
			spec: func() FilterSpec {
				return FilterSpec{Age: Range{Min: 0, Max: 100}, Usage: Range{Min: 0, Max: 1000}}
			},
			want: []string{"A. Silva", "B. Jones", "D. Park", "E. Novak"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(table, tt.spec(), cfg)

			assert.Equal(t, tt.want, names(got))
			assert.Equal(t, table.Columns, got.Columns)
		})
	}
}

func TestFilter_Idempotent(t *testing.T) {
	table := derivedFixture(t)
	cfg := obvConfig(t)
	spec := FilterSpec{
		Age:       Range{Min: 18, Max: 32},
		Usage:     Range{Min: 0, Max: 140},
		Positions: []string{"Centre Forward", "Left Back"},
	}

	once := Filter(table, spec, cfg)
	twice := Filter(once, spec, cfg)

	assert.Equal(t, names(once), names(twice))
}

func TestFilter_SkipsAbsentColumns(t *testing.T) {
	cfg := obvConfig(t)
	// No Matches column, so no Usage column is derived.
	table := testutil.TableOf(
		[]string{domain.ColumnName, domain.ColumnAge},
		[][]interface{}{{"p1", 20}, {"p2", 50}},
	)

	got := Filter(table, FilterSpec{
		Age:          Range{Min: 15, Max: 35},
		Usage:        Range{Min: 99, Max: 100},
		Positions:    []string{"Goalkeeper"},
		Competitions: []string{"Premier"},
	}, cfg)

	assert.Equal(t, []string{"p1"}, names(got))
}

func TestFilter_InvertedRangeWithoutColumn(t *testing.T) {
	table := testutil.TableOf([]string{domain.ColumnName}, [][]interface{}{{"p1"}})

	got := Filter(table, FilterSpec{Usage: Range{Min: 10, Max: 0}}, obvConfig(t))

	assert.Equal(t, 0, got.Len())
}

func TestFilter_DoesNotModifyInput(t *testing.T) {
	table := derivedFixture(t)
	before := cellText(table)

	Filter(table, FilterSpec{Age: Range{Min: 30, Max: 30}, Usage: Range{Min: 0, Max: 140}}, obvConfig(t))

	assert.Equal(t, before, cellText(table))
}

func TestTeamOptions(t *testing.T) {
	table := derivedFixture(t)
	cfg := obvConfig(t)

	tests := []struct {
		name         string
		competitions []string
		want         []string
	}{
		{"no selection", nil, []string{AllOption, "Alpha FC", "Beta United", "Gamma"}},
		{"single competition", []string{"Championship"}, []string{AllOption, "Beta United"}},
		{"two competitions", []string{"Serie A", "Premier"}, []string{AllOption, "Alpha FC", "Gamma"}},
		{"ALL wins", []string{"Premier", AllOption}, []string{AllOption, "Alpha FC", "Beta United", "Gamma"}},
		{"unknown competition", []string{"Ligue 1"}, []string{AllOption}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TeamOptions(table, tt.competitions, cfg))
		})
	}
}

func TestOptions(t *testing.T) {
	table := derivedFixture(t)

	t.Run("competition column", func(t *testing.T) {
		opts := Options(table, obvConfig(t))

		assert.Equal(t, []string{AllOption, "Centre Forward", "Left Back", "Goalkeeper", "Centre Back"}, opts.Positions)
		assert.Equal(t, []string{AllOption, "Premier", "Championship", "Serie A"}, opts.Competitions)
		assert.Equal(t, []string{AllOption, "Alpha FC", "Beta United", "Gamma"}, opts.Teams)
		assert.Equal(t, domain.ColumnCompetition, opts.CompetitionColumn)
		assert.Equal(t, SliderBounds{Min: 15, Max: 35, Step: 1, Default: [2]int{15, 35}}, opts.Age)
		assert.Equal(t, SliderBounds{Min: 0, Max: 140, Step: 1, Default: [2]int{0, 140}}, opts.Usage)
	})

	t.Run("league column", func(t *testing.T) {
		cfg, err := Preset("league")
		assert.NoError(t, err)

		opts := Options(table, cfg)

		assert.Equal(t, []string{AllOption, "England", "Italy"}, opts.Competitions)
		assert.Equal(t, []string{AllOption, "Alpha FC"}, TeamOptions(table, []string{"England"}, cfg)[:2])
	})

	t.Run("missing columns offer only ALL", func(t *testing.T) {
		opts := Options(testutil.TableOf([]string{domain.ColumnName}, nil), obvConfig(t))

		assert.Equal(t, []string{AllOption}, opts.Positions)
		assert.Equal(t, []string{AllOption}, opts.Teams)
	})
}
