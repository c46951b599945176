package observability

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger builds the process logger for a daemon-facing service
// and installs it globally. The polled daemon endpoint rides on every
// line so logs stay attributable when several exporters share a box.
func InitLogger(app, endpoint string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).With().
		Timestamp().
		Str("app", app).
		Str("daemon", endpoint).
		Logger()
	log.Logger = logger
	return logger
}
