// Package httpserver wraps net/http with graceful shutdown on context
// cancellation or OS signals, env-driven configuration, and a health probe
// handler.
package httpserver
