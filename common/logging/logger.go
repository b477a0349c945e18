package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Level zerolog.Level

const (
	DebugLevel = Level(zerolog.DebugLevel)
	InfoLevel  = Level(zerolog.InfoLevel)
	WarnLevel  = Level(zerolog.WarnLevel)
)

func (l Level) toZerolog() zerolog.Level {
	return zerolog.Level(l)
}

func (l Level) String() string {
	return l.toZerolog().String()
}

// Setup installs the global logger: human readable console output at debug
// level, JSON on stdout otherwise.
func Setup(level Level) {
	var writer io.Writer
	switch level.toZerolog() {
	case zerolog.DebugLevel, zerolog.TraceLevel:
		writer = zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.TimeFormat = time.RFC3339
		})
	default:
		writer = os.Stdout
	}
	SetupWriter(level, writer)
}

func SetupWriter(level Level, writer io.Writer) {
	zerolog.SetGlobalLevel(level.toZerolog())
	log.Logger = zerolog.
		New(writer).
		With().
		Timestamp().
		Caller().
		Logger()
}

// ParseLevel falls back to info for empty or unknown names.
func ParseLevel(lvl string) Level {
	parsedLevel, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(lvl)))
	if err != nil || parsedLevel == zerolog.NoLevel {
		return InfoLevel
	}
	return Level(parsedLevel)
}
