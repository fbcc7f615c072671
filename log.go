/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

const logDate string = `2006-01-02T15:04:05.000-07:00`

// newLogger only shows warnings and errors unless --verbose is set.
func newLogger(cfg *Config) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: logDate,
	})

	l.SetLevel(logrus.WarnLevel)
	if cfg.verbose {
		l.SetLevel(logrus.DebugLevel)
	}

	return l
}
