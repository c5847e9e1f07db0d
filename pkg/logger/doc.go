// Package logger builds the application's slog.Logger: JSON or text output,
// environment-driven defaults, and context extractors that stamp
// request-scoped attributes (tenant ID, request ID) onto every record.
package logger
