// Package api contains the HTTP and live session contracts of the player
// stats service. Version v1 represents the current stable API version.
package api

import (
	"playerstats/pkg/contracts/domain"
)

// Slider bounds accepted in requests. They are wider than the UI sliders so a
// client may ask for any plausible range.
const (
	MaxAge   = 100
	MaxUsage = 1000
)

// FilterRequest carries the user's filter selections. Nil bounds take the
// configured slider defaults; empty lists, or lists containing "ALL", do not
// restrict. A min above its max is valid and matches nothing.
type FilterRequest struct {
	AgeMin       *float64 `json:"age_min,omitempty" validate:"omitempty,gte=0,lte=100"`
	AgeMax       *float64 `json:"age_max,omitempty" validate:"omitempty,gte=0,lte=100"`
	UsageMin     *float64 `json:"usage_min,omitempty" validate:"omitempty,gte=0,lte=1000"`
	UsageMax     *float64 `json:"usage_max,omitempty" validate:"omitempty,gte=0,lte=1000"`
	Positions    []string `json:"positions,omitempty" validate:"omitempty,dive,notblank"`
	Competitions []string `json:"competitions,omitempty" validate:"omitempty,dive,notblank"`
	Teams        []string `json:"teams,omitempty" validate:"omitempty,dive,notblank"`
}

// ExportRequest is a FilterRequest plus the spreadsheet format
type ExportRequest struct {
	FilterRequest
	Format string `json:"format,omitempty" validate:"omitempty,oneof=xlsx csv"`
}

// TeamsRequest selects competitions for the dependent team list
type TeamsRequest struct {
	Competitions []string `json:"competitions,omitempty" validate:"omitempty,dive,notblank"`
}

// TableResponse is a formatted, projected table. Each row holds one value per
// column, in column order; missing cells are null.
type TableResponse struct {
	Columns []string         `json:"columns"`
	Rows    [][]domain.Value `json:"rows"`
	Count   int              `json:"count"`
}

// NewTableResponse converts a table for the wire
func NewTableResponse(t *domain.Table) TableResponse {
	rows := t.Records()
	columns := t.Columns
	if columns == nil {
		columns = []string{}
	}
	return TableResponse{
		Columns: columns,
		Rows:    rows,
		Count:   len(rows),
	}
}

// TeamsResponse lists the selectable teams
type TeamsResponse struct {
	Teams []string `json:"teams"`
}
