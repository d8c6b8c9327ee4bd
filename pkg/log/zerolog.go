package log

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/peopleml/attrition/pkg/errors"
)

// NewConsoleLogger builds a zerolog logger writing human-readable output,
// intended for interactive CLI runs. JSON output via SetupLogger remains
// the default for non-interactive use.
func NewConsoleLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// InstallWarningBridge routes pkg/errors warnings into the given zerolog
// logger. Warning types implementing zerolog.LogObjectMarshaler are
// logged with their structured fields.
func InstallWarningBridge(logger zerolog.Logger) {
	errors.SetZerologWarnFunc(func(warning error) {
		ev := logger.Warn()
		if m, ok := warning.(zerolog.LogObjectMarshaler); ok {
			ev.EmbedObject(m).Msg(warning.Error())
			return
		}
		ev.Msg(warning.Error())
	})
}
