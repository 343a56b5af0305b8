// Package services implements the business logic layer between the HTTP and
// live session transports and the data pipeline.
//
// StatsService owns one pipeline variant and a cached table loader. Every
// call obtains the shared derived table, evaluates the filters on a copy and
// returns a formatted, projected table; nothing a request does is visible to
// another request.
//
//	svc := services.NewStatsService(loader, pipeline, metrics, tracer, logger)
//	table, err := svc.Query(ctx, svc.Spec(req))
//
// Errors are returned as *errors.AppError so transports can map them to a
// status: SOURCE when the workbook cannot be fetched or parsed, VALIDATION for
// an unsupported export format, EXPORT when serialization fails. Context
// cancellation is passed through unchanged.
//
// HealthService reports liveness, readiness (the player table can be loaded)
// and build information.
package services
