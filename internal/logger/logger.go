// Package logger configures the process-wide logrus logger.
package logger

import (
	"io" // Writer composition
	"os" // Stdout

	"storefront/internal/config" // Application configuration

	"github.com/natefinch/lumberjack" // Rolling log files
	"github.com/sirupsen/logrus"      // Structured logging
)

// Rotation limits for LOG_FILE
const (
	maxSizeMB  = 50
	maxBackups = 5
	maxAgeDays = 30
)

// Setup applies level, format and output from cfg to the standard logrus logger
func Setup(cfg *config.Config) {
	Configure(logrus.StandardLogger(), cfg)
}

// Configure applies cfg to the given logger
func Configure(l *logrus.Logger, cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel // Unknown levels fall back to info
	}
	l.SetLevel(level)

	if cfg.LogFormat == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   true,
		})
	}
	l.SetOutput(out)
}
