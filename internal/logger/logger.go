package logger

import (
	"log/slog"
	"os"
)

// New builds the service-wide JSON logger with the service name attached to
// every record.
func New(service string) *slog.Logger {
	hostname, _ := os.Hostname()
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(h).With("service", service, "hostname", hostname)
}
