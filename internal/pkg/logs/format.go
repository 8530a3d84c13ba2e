package logs

import (
	"fmt"
	"io"
	"regexp"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// consoleFormatter renders "LEVEL timestamp caller [log_id] message".
type consoleFormatter struct {
	enableColor bool
}

func (f *consoleFormatter) Format(e *logrus.Entry) ([]byte, error) {
	level := levelTag(e.Level)
	if f.enableColor {
		level = colorizeLevel(e.Level, level)
	}

	caller, _ := e.Data["caller"].(string)
	logID, _ := e.Data["log_id"].(string)

	line := fmt.Sprintf("%s %s %s %s %s\n",
		level,
		e.Time.Format("2006-01-02 15:04:05,000"),
		caller,
		logID,
		e.Message,
	)
	return []byte(line), nil
}

func levelTag(l logrus.Level) string {
	switch l {
	case logrus.DebugLevel:
		return "DEBUG"
	case logrus.InfoLevel:
		return "INFO"
	case logrus.WarnLevel:
		return "WARN"
	case logrus.ErrorLevel:
		return "ERROR"
	case logrus.FatalLevel:
		return "FATAL"
	default:
		return "INFO"
	}
}

var (
	colorDebug = color.New(color.FgCyan)
	colorInfo  = color.New(color.FgGreen)
	colorWarn  = color.New(color.FgYellow)
	colorError = color.New(color.FgRed)
)

func colorizeLevel(l logrus.Level, tag string) string {
	switch l {
	case logrus.DebugLevel:
		return colorDebug.Sprint(tag)
	case logrus.WarnLevel:
		return colorWarn.Sprint(tag)
	case logrus.ErrorLevel, logrus.FatalLevel:
		return colorError.Sprint(tag)
	default:
		return colorInfo.Sprint(tag)
	}
}

func colorAllowed(output string) bool {
	if output == "file" {
		return false
	}
	return !color.NoColor
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// ansiStripper removes color escapes before writing to a file sink.
type ansiStripper struct {
	w io.Writer
}

func (s ansiStripper) Write(p []byte) (int, error) {
	if _, err := s.w.Write(ansiPattern.ReplaceAll(p, nil)); err != nil {
		return 0, err
	}
	return len(p), nil
}
