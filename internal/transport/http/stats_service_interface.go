package http

import (
	"context"

	"playerstats/internal/dataprocessing"
	"playerstats/internal/services"
	api "playerstats/pkg/contracts/api/v1"
	"playerstats/pkg/contracts/domain"
)

// StatsServiceInterface defines the stats operations used by the handlers
type StatsServiceInterface interface {
	Spec(req api.FilterRequest) dataprocessing.FilterSpec
	Options(ctx context.Context) (dataprocessing.FilterOptions, error)
	TeamOptions(ctx context.Context, competitions []string) ([]string, error)
	Query(ctx context.Context, spec dataprocessing.FilterSpec) (*domain.Table, error)
	Export(ctx context.Context, spec dataprocessing.FilterSpec, format string) (*services.Export, error)
}

var _ StatsServiceInterface = (*services.StatsService)(nil)
