// Package logging builds the zerolog loggers used by the callers and pipeline.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Standard field keys shared by every component.
const (
	ModelNameKey  = "model.name"
	OperationKey  = "ml.operation"
	ComponentKey  = "ml.component"
	SamplesKey    = "data.samples"
	AttributesKey = "data.attributes"
	ClassesKey    = "data.classes"
	FoldsKey      = "cv.folds"
	AccuracyKey   = "metric.accuracy"
	DurationKey   = "perf.duration_ms"
)

// New returns a console logger writing to w at the given level.
// Unknown levels fall back to info.
func New(level string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// Component returns a child logger tagged with the component name.
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str(ComponentKey, name).Logger()
}

// Nop returns a disabled logger.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
