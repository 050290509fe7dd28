package config

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// SetupLogging routes the logrus default logger to the data-dir log
// file. Stdout carries selection output and stderr carries diagnostics,
// so the logger must never write to either. Returns a closer for the
// log file.
func SetupLogging(dataDir, level string) (io.Closer, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create data directory")
	}

	path := filepath.Join(dataDir, "television.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open log file")
	}

	log.SetOutput(f)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	lv, err := log.ParseLevel(level)
	if err != nil {
		lv = log.InfoLevel
	}
	log.SetLevel(lv)

	return f, nil
}

// DisableLogging silences the default logger, for subcommands that never
// touch the data dir.
func DisableLogging() {
	log.SetOutput(io.Discard)
}
