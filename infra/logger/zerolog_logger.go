package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger creates a ZerologLogger writing to stderr, leaving stdout
// to schedule output. APP_ENV=dev selects the console format.
func NewZerologLogger(component string) Logger {
	return NewZerologLoggerWithWriter(component, os.Stderr)
}

var (
	defaultsMu     sync.RWMutex
	defaultLevel   = zerolog.InfoLevel
	defaultConsole bool
)

// Configure sets the level and format used when LOG_LEVEL and APP_ENV are
// unset. format is "json" or "console".
func Configure(lvl, format string) error {
	parsed := zerolog.InfoLevel
	if lvl != "" {
		var err error
		if parsed, err = zerolog.ParseLevel(strings.ToLower(lvl)); err != nil {
			return err
		}
	}
	defaultsMu.Lock()
	defaultLevel = parsed
	defaultConsole = strings.EqualFold(format, "console")
	defaultsMu.Unlock()
	return nil
}

// NewZerologLoggerWithWriter creates a ZerologLogger writing to w.
func NewZerologLoggerWithWriter(component string, w io.Writer) Logger {
	if console() {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	z := zerolog.New(w).Level(level()).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

func console() bool {
	if env := strings.ToLower(os.Getenv("APP_ENV")); env != "" {
		return env == "dev"
	}
	defaultsMu.RLock()
	defer defaultsMu.RUnlock()
	return defaultConsole
}

// level reads LOG_LEVEL, falling back to the configured level.
func level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL")))
	if err != nil || lvl == zerolog.NoLevel {
		defaultsMu.RLock()
		defer defaultsMu.RUnlock()
		return defaultLevel
	}
	return lvl
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	if ev == nil {
		return
	}
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
