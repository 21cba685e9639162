// Package logger provides structured logging functionality for the application.
//
// It configures Go's log/slog package with a JSON handler at the configured
// level and carries request-scoped loggers through context.Context.
package logger
