// Package logger builds the application's slog loggers: JSON to stdout,
// optionally fanned out to Sentry for warnings and errors.
package logger
