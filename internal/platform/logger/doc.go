// Package logger provides structured logging setup and context
// propagation helpers built on log/slog.
package logger
