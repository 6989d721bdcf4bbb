// Package logging configures the process-wide zerolog logger.
//
// Every package logs through github.com/rs/zerolog/log; Setup only decides
// where those events go and which level passes.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// TimeFormat is the console timestamp layout.
const TimeFormat = "15:04:05.00"

// ParseLevel maps a level name to a zerolog level. An empty name is info.
func ParseLevel(name string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return zerolog.TraceLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q (want trace, debug, info, warn or error)", name)
	}
}

// Setup sends the global logger to w in console format and filters events
// below level.
func Setup(w io.Writer, level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = New(w)
	return nil
}

// SetupJSON is Setup with one JSON object per line, for log collectors.
func SetupJSON(w io.Writer, level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	return nil
}

// New returns a console logger writing to w.
func New(w io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: TimeFormat}).
		With().Timestamp().Logger()
}

// Progress times an operation and logs its completion with the elapsed time.
type Progress struct {
	start time.Time
}

// Start begins timing.
func Start() *Progress {
	return &Progress{start: time.Now()}
}

// Done logs msg at info level with the elapsed time rounded to milliseconds.
func (p *Progress) Done(msg string) {
	log.Info().Dur("elapsed", p.Elapsed()).Msg(msg)
}

// Elapsed is the time since Start.
func (p *Progress) Elapsed() time.Duration {
	return time.Since(p.start).Round(time.Millisecond)
}
