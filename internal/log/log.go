package log

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Level logrus.Level

const (
	ErrorLevel = Level(logrus.ErrorLevel)
	WarnLevel  = Level(logrus.WarnLevel)
	InfoLevel  = Level(logrus.InfoLevel)
	DebugLevel = Level(logrus.DebugLevel)
	TraceLevel = Level(logrus.TraceLevel)
)

// Fields is an alias so callers don't need to import logrus.
type Fields = logrus.Fields

var Logger *logrus.Logger

func init() {
	Logger = logrus.New()
	Logger.Formatter = textFormatter()
}

func textFormatter() logrus.Formatter {
	return &logrus.TextFormatter{
		DisableLevelTruncation: true,
		PadLevelText:           true,
		TimestampFormat:        "2006/01/02 15:04:05",
		FullTimestamp:          true,
	}
}

// Options configures the package logger.
type Options struct {
	Level  string
	Format string // text or json
	File   string // empty logs to stderr only
}

// Configure applies opts to the package logger. Unknown levels fall back to info.
func Configure(opts Options) {
	level, err := logrus.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)

	if strings.EqualFold(opts.Format, "json") {
		Logger.Formatter = &logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"}
	} else {
		Logger.Formatter = textFormatter()
	}

	if opts.File == "" {
		Logger.SetOutput(os.Stderr)
		return
	}
	Logger.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    50, // MB
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	}))
}

func SetLevel(level Level) {
	Logger.SetLevel(logrus.Level(level))
}

func WithField(key string, value any) *logrus.Entry {
	return Logger.WithField(key, value)
}

func WithFields(fields Fields) *logrus.Entry {
	return Logger.WithFields(fields)
}

func Debugf(fmt string, args ...any) {
	Logger.Debugf(fmt, args...)
}

func Infof(fmt string, args ...any) {
	Logger.Infof(fmt, args...)
}
func Info(args ...any) {
	Logger.Infoln(args...)
}

func Warnf(fmt string, args ...any) {
	Logger.Warnf(fmt, args...)
}

func Errorf(fmt string, args ...any) {
	Logger.Errorf(fmt, args...)
}
func Error(args ...any) {
	Logger.Errorln(args...)
}
