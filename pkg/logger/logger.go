// Package logger provides a structured, levelled logger built on log/slog.
//
// In local development records go to a human-readable text handler; in
// production they go to a JSON handler, optionally fanned out to MongoDB
// when MONGO_LOG_URI is configured (see mongo_handler.go).
//
//	logger.Info("checkout complete", "order_id", order.ID, "total", order.Total)
package logger

import (
	"log/slog"
	"os"

	"github.com/mestawet/gebeya/config"
)

var L *slog.Logger

func init() {
	var handler slog.Handler

	switch config.AppEnv() {
	case "production", "prod":
		opts := &slog.HandlerOptions{Level: slog.LevelInfo}
		handler = slog.NewJSONHandler(os.Stdout, opts) // structured JSON for log aggregators
	default:
		opts := &slog.HandlerOptions{Level: slog.LevelDebug}
		handler = slog.NewTextHandler(os.Stdout, opts) // human-readable for dev
	}

	if uri := config.MongoLogURI(); uri != "" {
		if mh, err := NewMongoHandler(uri, config.MongoLogDatabase(), config.MongoLogCollection()); err == nil {
			handler = NewMultiHandler(handler, mh)
		}
	}

	L = slog.New(handler)
	slog.SetDefault(L)
}

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at INFO level.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at WARN level.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at ERROR level.
func Error(msg string, args ...any) { L.Error(msg, args...) }
