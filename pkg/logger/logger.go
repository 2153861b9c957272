package logger

import (
	"io"
	"os"
	"path/filepath"

	"irigasi/pkg/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var Logger *logrus.Logger

// Initialize sets level, formatter and the rotating file output
func Initialize(cfg *config.Config) error {
	Logger = logrus.New()

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)

	if cfg.Log.Format == "json" {
		Logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	if cfg.Log.FilePath != "" {
		logDir := filepath.Dir(cfg.Log.FilePath)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return err
		}

		rotateLogger := &lumberjack.Logger{
			Filename:   cfg.Log.FilePath,
			MaxSize:    cfg.Log.MaxSize,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAge,
			Compress:   cfg.Log.Compress,
		}

		// stdout and file
		multiWriter := io.MultiWriter(os.Stdout, rotateLogger)
		Logger.SetOutput(multiWriter)
	}

	return nil
}

// GetLogger returns the global logger; a default one when Initialize was never called (tests)
func GetLogger() *logrus.Logger {
	if Logger == nil {
		return logrus.StandardLogger()
	}
	return Logger
}
