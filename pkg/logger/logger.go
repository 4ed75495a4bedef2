package logger

import (
	"context"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Logger with controls for levels and colors.
//
// Loggers serve both as traditional loggers (where each Infof() call is a
// discrete entry) and as Writers (where each Write() may be part of a larger
// stream, like a crash log being echoed to the terminal).
//
// Discrete messages get a trailing newline before they are passed to Write().
type Logger interface {
	// log information that is likely to only be of interest to developers of this tool
	Debugf(format string, a ...interface{})

	// log information that a user might not want to see on every run, but
	// that helps when figuring out why an alert did or didn't show up
	Verbosef(format string, a ...interface{})

	// log information that we always want to show
	Infof(format string, a ...interface{})

	Warnf(format string, a ...interface{})

	Errorf(format string, a ...interface{})

	Write(level Level, bytes []byte)

	// gets an io.Writer that writes at the specified level
	Writer(level Level) io.Writer

	Level() Level

	SupportsColor() bool
}

type Level struct {
	id       int32
	severity int32
}

func (l Level) ID() int32 {
	return l.id
}

// If l is the logger level, determine if we should display
// logs of the given severity.
func (l Level) ShouldDisplay(log Level) bool {
	return l.severity <= log.severity
}

func (l Level) AsSevereAs(log Level) bool {
	return l.severity >= log.severity
}

var (
	NoneLvl    = Level{id: 0, severity: 0}
	DebugLvl   = Level{id: 3, severity: 100}
	VerboseLvl = Level{id: 2, severity: 200}
	InfoLvl    = Level{id: 1, severity: 300}
	WarnLvl    = Level{id: 4, severity: 400}
	ErrorLvl   = Level{id: 5, severity: 500}
)

type loggerContextKeyType struct{}

var loggerContextKey = loggerContextKeyType{}

func Get(ctx context.Context) Logger {
	val := ctx.Value(loggerContextKey)

	if val != nil {
		return val.(Logger)
	}

	// No logger found in context, something is wrong.
	panic("Called logger.Get(ctx) on a context with no logger attached!")
}

func NewLogger(minLevel Level, writer io.Writer) Logger {
	// adapted from fatih/color
	supportsColor := true
	if os.Getenv("TERM") == "dumb" {
		supportsColor = false
	} else {
		file, isFile := writer.(*os.File)
		if isFile {
			fd := file.Fd()
			supportsColor = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		} else {
			supportsColor = false
		}
	}
	return NewFuncLogger(supportsColor, minLevel, func(level Level, bytes []byte) error {
		_, err := writer.Write(bytes)
		return err
	})
}

func WithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// Returns a context containing a logger that forks all of its output
// to both the parent context's logger and to the given `io.Writer`
func CtxWithForkedOutput(ctx context.Context, writer io.Writer) context.Context {
	l := Get(ctx)

	write := func(level Level, b []byte) error {
		l.Write(level, b)
		if l.Level().ShouldDisplay(level) {
			b = append([]byte{}, b...)
			_, err := writer.Write(b)
			if err != nil {
				return err
			}
		}
		return nil
	}

	forkedLogger := NewFuncLogger(l.SupportsColor(), l.Level(), write)
	return WithLogger(ctx, forkedLogger)
}

func getColor(l Logger, c color.Attribute) *color.Color {
	color := color.New(c)
	if !l.SupportsColor() {
		color.DisableColor()
	}
	return color
}

func Blue(l Logger) *color.Color   { return getColor(l, color.FgBlue) }
func Yellow(l Logger) *color.Color { return getColor(l, color.FgYellow) }
func Green(l Logger) *color.Color  { return getColor(l, color.FgGreen) }
func Red(l Logger) *color.Color    { return getColor(l, color.FgRed) }
