package logging

import (
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm/logger"
)

// Log is the process-wide logger. Packages log through it so tests and the
// server share one configuration.
var Log = logrus.NewEntry(logrus.StandardLogger())

// Setup configures the global logger: JSON output in production, text
// otherwise.
func Setup(production bool, level string) {
	l := logrus.New()

	if production {
		l.Formatter = &logrus.JSONFormatter{}
	} else {
		l.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.Level = lvl

	Log = logrus.NewEntry(l)
}

// WithField is a shorthand for Log.WithField.
func WithField(key string, value interface{}) *logrus.Entry {
	return Log.WithField(key, value)
}

// WithFields is a shorthand for Log.WithFields.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Log.WithFields(fields)
}

// GormLogger bridges gorm's statement logging onto logrus.
func GormLogger() logger.Interface {
	return logger.New(Log, logger.Config{
		SlowThreshold: 200 * time.Millisecond,
		Colorful:      false,
		LogLevel: (func() logger.LogLevel {
			switch Log.Logger.Level {
			case logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel:
				return logger.Error
			case logrus.WarnLevel, logrus.InfoLevel:
				return logger.Warn
			default:
				return logger.Info
			}
		})(),
	})
}
