package logger

import (
	"log/slog"
	"os"

	slogotel "github.com/remychantenay/slog-otel"
)

var LogLevel = new(slog.LevelVar)

var jsonHandler = slog.NewJSONHandler(
	os.Stderr,
	&slog.HandlerOptions{AddSource: true, Level: LogLevel},
)
var otelHandler = slogotel.NewOtelHandler(slogotel.WithNoTraceEvents(true))
var Handler = otelHandler(jsonHandler)
var Logger = slog.New(Handler)

// InitSlog installs the platform logger as the process default.
func InitSlog() {
	slog.SetDefault(Logger)
	LogLevel.Set(slog.LevelDebug)
}
