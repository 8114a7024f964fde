// Package logging configures the process wide logrus logger: the stdout
// formatter and an optional persistent log file.
package logging

import (
	"io"
	"os"
	"strings"

	joonix "github.com/joonix/log"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// ErrUnknownFormat is returned for a log format name that is not supported.
var ErrUnknownFormat = errors.New("unknown log format")

// Formats lists the supported log format names.
var Formats = []string{"text", "fluentd", "json"}

var _ = logrus.Hook(&WriterHook{})

// WriterHook is a hook that writes logs of specified LogLevels to a file logger.
type WriterHook struct {
	LogLevels []logrus.Level
	Logger    *logrus.Logger
}

// Fire will be called when some logging function is called with current hook.
// It will format log entry to string and write it to the file logger.
func (hook *WriterHook) Fire(entry *logrus.Entry) error {
	line, err := entry.String()
	if err != nil {
		return err
	}
	hook.Logger.Println(strings.TrimSuffix(line, "\n"))
	return nil
}

// Levels defines on which log levels this hook would trigger.
func (hook *WriterHook) Levels() []logrus.Level {
	return hook.LogLevels
}

// NewFormatter returns the formatter for a format name. Text output is
// colored only when colors is set.
func NewFormatter(format string, colors bool) (logrus.Formatter, error) {
	switch format {
	case "text":
		formatter := new(prefixed.TextFormatter)
		formatter.TimestampFormat = "2006-01-02 15:04:05"
		formatter.FullTimestamp = true
		formatter.DisableColors = !colors
		return formatter, nil
	case "fluentd":
		return &joonix.Formatter{}, nil
	case "json":
		return &logrus.JSONFormatter{}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%q", format)
	}
}

// Configure sets the level and stdout format of the standard logger.
func Configure(verbosity, format string) error {
	level, err := logrus.ParseLevel(verbosity)
	if err != nil {
		return errors.Wrap(err, "could not parse verbosity")
	}
	formatter, err := NewFormatter(format, true)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(formatter)
	return nil
}

// ConfigurePersistentLogging adds a log-to-file writer hook to the standard
// logger. The writer hook appends new logs to logFileName.
func ConfigurePersistentLogging(logFileName, format string) error {
	f, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return errors.Wrap(err, "could not open log file")
	}
	hook, err := newFileHook(f, format)
	if err != nil {
		return err
	}
	logrus.AddHook(hook)
	logrus.WithField("logFileName", logFileName).Info("Logs will be made persistent")
	return nil
}

func newFileHook(w io.Writer, format string) (*WriterHook, error) {
	formatter, err := NewFormatter(format, false)
	if err != nil {
		return nil, err
	}
	fileLogger := &logrus.Logger{
		Out:       w,
		Formatter: formatter,
		Hooks:     make(logrus.LevelHooks),
		Level:     logrus.TraceLevel,
	}
	return &WriterHook{LogLevels: logrus.AllLevels, Logger: fileLogger}, nil
}
