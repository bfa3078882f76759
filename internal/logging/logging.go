package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup configures a JSON slog logger tagged with the service name and
// environment, and installs it as the default. Key material and raw tokens
// must never reach this logger; callers log redacted diagnostics only.
func Setup(service, env string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{})

	attrs := []any{slog.String("service", strings.TrimSpace(service))}
	if env = strings.TrimSpace(env); env != "" {
		attrs = append(attrs, slog.String("env", env))
	}

	logger := slog.New(handler).With(attrs...)
	slog.SetDefault(logger)

	return logger
}
