// Package http implements the HTTP handlers of the player stats service. The
// handlers are a thin layer over internal/services: they parse and validate
// the request, call the service and render the result.
//
// # Routes
//
//	GET  /api/stats/options    filter choices and slider bounds
//	GET  /api/stats/teams      team choices for ?competition=...
//	POST /api/stats/query      FilterRequest body, formatted table
//	GET  /api/stats/players    the same query as query-string parameters
//	GET  /api/stats/export     spreadsheet download, ?format=xlsx|csv
//
//	GET  /api/health           process is up
//	GET  /api/health/ready     player table is loaded (503 otherwise)
//	GET  /api/health/live      liveness with runtime details
//	GET  /api/version          build information
//
// Errors are written as RFC 7807 problem details through
// internal/errors.ErrorHandler. Request bodies are decoded and validated with
// middleware.Validator.
//
// Repeated query parameters are used for lists:
//
//	/api/stats/players?position=Left%20Back&position=Goalkeeper&age_min=20
package http
