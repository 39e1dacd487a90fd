// Package zerologger backs the glog contracts with zerolog so hosts that
// already log JSON through zerolog can hand the same sink to tink.
package zerologger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/rs/zerolog"
)

type Options struct {
	// Level is one of trace, debug, info, warn, error. Defaults to info.
	Level  string
	Pretty bool
	Output io.Writer
}

// New builds a zerolog logger from opts.
func New(opts Options) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(ParseLevel(opts.Level)).With().Timestamp().Logger()
}

func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Logger adapts zerolog to glog.Logger. Variadic args are read as key/value
// pairs; a trailing key without value is logged under "arg".
type Logger struct {
	zl zerolog.Logger
}

func NewLogger(zl zerolog.Logger) *Logger {
	return &Logger{zl: zl}
}

func (l *Logger) Trace(msg string, args ...any) { l.emit(l.zl.Trace(), msg, args) }
func (l *Logger) Debug(msg string, args ...any) { l.emit(l.zl.Debug(), msg, args) }
func (l *Logger) Info(msg string, args ...any)  { l.emit(l.zl.Info(), msg, args) }
func (l *Logger) Warn(msg string, args ...any)  { l.emit(l.zl.Warn(), msg, args) }
func (l *Logger) Error(msg string, args ...any) { l.emit(l.zl.Error(), msg, args) }

// Fatal logs at error level with fatal=true. It never exits the process.
func (l *Logger) Fatal(msg string, args ...any) {
	l.emit(l.zl.Error().Bool("fatal", true), msg, args)
}

func (l *Logger) WithContext(ctx context.Context) glog.Logger {
	if ctx == nil {
		return l
	}
	return &Logger{zl: l.zl.With().Ctx(ctx).Logger()}
}

func (l *Logger) WithFields(fields map[string]any) glog.Logger {
	if len(fields) == 0 {
		return l
	}
	return &Logger{zl: l.zl.With().Fields(fields).Logger()}
}

func (l *Logger) emit(event *zerolog.Event, msg string, args []any) {
	if event == nil {
		return
	}
	for index := 0; index < len(args); index += 2 {
		if index+1 >= len(args) {
			event = event.Interface("arg", args[index])
			break
		}
		key, ok := args[index].(string)
		if !ok {
			key = fmt.Sprint(args[index])
		}
		switch value := args[index+1].(type) {
		case error:
			event = event.AnErr(key, value)
		default:
			event = event.Interface(key, value)
		}
	}
	event.Msg(msg)
}

// Provider hands out loggers tagged with a "logger" field per name.
type Provider struct {
	root zerolog.Logger
}

func NewProvider(root zerolog.Logger) *Provider {
	return &Provider{root: root}
}

func (p *Provider) GetLogger(name string) glog.Logger {
	name = strings.TrimSpace(name)
	if name == "" {
		return NewLogger(p.root)
	}
	return NewLogger(p.root.With().Str("logger", name).Logger())
}

var (
	_ glog.Logger         = (*Logger)(nil)
	_ glog.FieldsLogger   = (*Logger)(nil)
	_ glog.LoggerProvider = (*Provider)(nil)
)
