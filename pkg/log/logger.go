package log

import (
	"io"
	"os"
	"strings"

	"github.com/df07/go-restir/pkg/core"
	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

// Level is a logging verbosity
type Level logging.Level

// Levels accepted by SetLevel, from most to least verbose.
const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
)

var format = logging.MustStringFormatter(
	`%{color}[%{time:15:04:05.000}] [%{module}] [%{level:.4s}]%{color:reset} %{message}`,
)

var leveledBackend logging.LeveledBackend

// New returns a named logger writing to the shared backend
func New(name string) core.Logger {
	return logging.MustGetLogger(name)
}

// SetSink redirects all loggers to sink. The current level is kept.
func SetSink(sink io.Writer) {
	level := logging.NOTICE
	if leveledBackend != nil {
		level = leveledBackend.GetLevel("")
	}
	backend := logging.NewLogBackend(sink, "", 0)
	leveledBackend = logging.AddModuleLevel(logging.NewBackendFormatter(backend, format))
	leveledBackend.SetLevel(level, "")
	logging.SetBackend(leveledBackend)
}

// SetLevel sets the verbosity of every logger
func SetLevel(level Level) {
	leveledBackend.SetLevel(level.goLogging(), "")
}

func (l Level) goLogging() logging.Level {
	switch l {
	case Debug:
		return logging.DEBUG
	case Info:
		return logging.INFO
	case Warning:
		return logging.WARNING
	case Error:
		return logging.ERROR
	default:
		return logging.NOTICE
	}
}

// ParseLevel converts a level name such as "debug" or "warning"
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return Debug, nil
	case "info":
		return Info, nil
	case "", "notice":
		return Notice, nil
	case "warn", "warning":
		return Warning, nil
	case "error":
		return Error, nil
	}
	return Notice, errors.Errorf("log: unknown level %q", name)
}

type discard struct{}

func (discard) Debugf(string, ...interface{})   {}
func (discard) Infof(string, ...interface{})    {}
func (discard) Noticef(string, ...interface{})  {}
func (discard) Warningf(string, ...interface{}) {}
func (discard) Errorf(string, ...interface{})   {}

// Discard returns a logger that drops everything
func Discard() core.Logger {
	return discard{}
}

func init() {
	SetSink(os.Stderr)
	SetLevel(Notice)
}
