package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "playerstats/internal/errors"
	"playerstats/internal/exporter"
	"playerstats/internal/middleware"
	api "playerstats/pkg/contracts/api/v1"
)

// Query parameter names of the GET forms
const (
	ParamAgeMin      = "age_min"
	ParamAgeMax      = "age_max"
	ParamUsageMin    = "usage_min"
	ParamUsageMax    = "usage_max"
	ParamPosition    = "position"
	ParamCompetition = "competition"
	ParamTeam        = "team"
	ParamFormat      = "format"
)

// StatsHandler handles the player stats endpoints
type StatsHandler struct {
	service      StatsServiceInterface
	validator    *middleware.Validator
	params       *middleware.QueryParamValidator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(service StatsServiceInterface, validator *middleware.Validator, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		service:      service,
		validator:    validator,
		params:       middleware.NewQueryParamValidator(),
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "stats_handler")),
	}
}

// Routes returns the stats routes
func (h *StatsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/options", h.GetOptions)
		r.Get("/teams", h.GetTeams)
		r.Get("/players", h.GetPlayers)
		r.With(middleware.ContentTypeValidator("application/json")).Post("/query", h.PostQuery)
	})

	r.Get("/export", h.GetExport)
	return r
}

// GetOptions handles GET /api/stats/options
func (h *StatsHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.Options(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, opts)
}

// GetTeams handles GET /api/stats/teams?competition=...
func (h *StatsHandler) GetTeams(w http.ResponseWriter, r *http.Request) {
	req := api.TeamsRequest{Competitions: h.params.Strings(r, ParamCompetition)}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	teams, err := h.service.TeamOptions(r.Context(), req.Competitions)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if teams == nil {
		teams = []string{}
	}
	render.JSON(w, r, api.TeamsResponse{Teams: teams})
}

// PostQuery handles POST /api/stats/query
func (h *StatsHandler) PostQuery(w http.ResponseWriter, r *http.Request) {
	var req api.FilterRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.query(w, r, req)
}

// GetPlayers handles GET /api/stats/players
func (h *StatsHandler) GetPlayers(w http.ResponseWriter, r *http.Request) {
	req, err := h.filterFromQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.query(w, r, req)
}

// GetExport handles GET /api/stats/export and streams the spreadsheet as an attachment
func (h *StatsHandler) GetExport(w http.ResponseWriter, r *http.Request) {
	format, err := h.params.Enum(r, ParamFormat, []string{exporter.FormatXLSX, exporter.FormatCSV}, exporter.FormatXLSX)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	req, err := h.filterFromQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	export, err := h.service.Export(r.Context(), h.service.Spec(req), format)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "serving export",
		slog.String("format", export.Format),
		slog.Int("rows", export.Rows),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", export.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(export.Data); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write export body",
			slog.String("error", err.Error()))
	}
}

func (h *StatsHandler) query(w http.ResponseWriter, r *http.Request, req api.FilterRequest) {
	table, err := h.service.Query(r.Context(), h.service.Spec(req))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.NewTableResponse(table))
}

// filterFromQuery reads and validates the query-string form of a FilterRequest
func (h *StatsHandler) filterFromQuery(r *http.Request) (api.FilterRequest, error) {
	var req api.FilterRequest
	bounds := []struct {
		param string
		dst   **float64
	}{
		{ParamAgeMin, &req.AgeMin},
		{ParamAgeMax, &req.AgeMax},
		{ParamUsageMin, &req.UsageMin},
		{ParamUsageMax, &req.UsageMax},
	}
	for _, b := range bounds {
		v, err := h.params.Float(r, b.param)
		if err != nil {
			return req, err
		}
		*b.dst = v
	}

	req.Positions = h.params.Strings(r, ParamPosition)
	req.Competitions = h.params.Strings(r, ParamCompetition)
	req.Teams = h.params.Strings(r, ParamTeam)

	if err := h.validator.ValidateStruct(req); err != nil {
		return req, err
	}
	return req, nil
}
