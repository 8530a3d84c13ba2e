// Package logs is the process-wide logger: logrus core, optional lumberjack
// file rotation, and a colorized console format with per-request log IDs.
package logs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type ctxKey string

const ctxKeyLogID ctxKey = "log_id"

// Options mirror the logging section of the config file.
type Options struct {
	Level      string // debug, info, warn, error
	Format     string // text, json
	Output     string // stdout, file, both
	File       string
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

var std = newDefault()

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&consoleFormatter{enableColor: colorAllowed("stdout")})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Init replaces the default logger with one built from opts.
// Not concurrent-safe; call once during startup.
func Init(opts Options) error {
	l := logrus.New()

	output := strings.ToLower(strings.TrimSpace(opts.Output))
	if output == "" {
		output = "stdout"
	}
	w, err := buildWriter(opts, output)
	if err != nil {
		return err
	}
	l.SetOutput(w)

	if strings.ToLower(strings.TrimSpace(opts.Format)) == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&consoleFormatter{enableColor: colorAllowed(output)})
	}

	l.SetLevel(parseLevel(opts.Level))
	std = l
	return nil
}

func buildWriter(opts Options, output string) (io.Writer, error) {
	switch output {
	case "stdout":
		return os.Stdout, nil
	case "file":
		return rotateWriter(opts)
	case "both":
		w, err := rotateWriter(opts)
		if err != nil {
			return nil, err
		}
		return io.MultiWriter(os.Stdout, ansiStripper{w}), nil
	default:
		return nil, fmt.Errorf("unsupported log output: %s", output)
	}
}

func rotateWriter(opts Options) (io.Writer, error) {
	if strings.TrimSpace(opts.File) == "" {
		return nil, fmt.Errorf("log file is required when output includes file")
	}
	if dir := filepath.Dir(opts.File); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}

	maxSize := opts.MaxSize
	if maxSize <= 0 {
		maxSize = 100
	}
	return &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    maxSize,
		MaxBackups: max(opts.MaxBackups, 0),
		MaxAge:     max(opts.MaxAge, 0),
		Compress:   opts.Compress,
	}, nil
}

func parseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

// NewLogID returns a fresh request-scoped log identifier.
func NewLogID() string {
	return uuid.New().String()
}

// SetLogID attaches a log ID to the context.
func SetLogID(ctx context.Context, logID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKeyLogID, logID)
}

// GetLogID returns the log ID carried by the context, if any.
func GetLogID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKeyLogID).(string)
	return id
}

func Debug(format string, v ...interface{}) { entry(nil).Debugf(format, v...) }
func Info(format string, v ...interface{})  { entry(nil).Infof(format, v...) }
func Warn(format string, v ...interface{})  { entry(nil).Warnf(format, v...) }
func Error(format string, v ...interface{}) { entry(nil).Errorf(format, v...) }
func Fatal(format string, v ...interface{}) { entry(nil).Fatalf(format, v...) }

func CtxDebug(ctx context.Context, format string, v ...interface{}) {
	entry(ctx).Debugf(format, v...)
}

func CtxInfo(ctx context.Context, format string, v ...interface{}) {
	entry(ctx).Infof(format, v...)
}

func CtxWarn(ctx context.Context, format string, v ...interface{}) {
	entry(ctx).Warnf(format, v...)
}

func CtxError(ctx context.Context, format string, v ...interface{}) {
	entry(ctx).Errorf(format, v...)
}

func CtxFatal(ctx context.Context, format string, v ...interface{}) {
	entry(ctx).Fatalf(format, v...)
}

// entry builds the logrus entry for one call site, capturing the caller two
// frames up (the exported helper's caller).
func entry(ctx context.Context) *logrus.Entry {
	e := logrus.NewEntry(std)
	if _, file, line, ok := runtime.Caller(2); ok {
		e = e.WithField("caller", fmt.Sprintf("%s:%d", shortFilePath(file), line))
	}
	if id := GetLogID(ctx); id != "" {
		e = e.WithField("log_id", id)
	}
	return e
}

// shortFilePath returns "dir/file.go" when a parent directory exists,
// otherwise just "file.go".
func shortFilePath(fullPath string) string {
	dir, file := filepath.Split(fullPath)
	if dir == "" {
		return file
	}
	return filepath.Base(filepath.Clean(dir)) + "/" + file
}
