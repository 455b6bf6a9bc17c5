package main

import (
	"bytes"
	"io"

	"github.com/sirupsen/logrus"
)

// newLogger returns the CLI diagnostic logger writing to w.
// Warnings are shown by default, --verbose adds debug detail and --quiet
// keeps errors only.
func newLogger(w io.Writer, verbose, quiet bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&lineFormatter{})

	switch {
	case quiet:
		log.SetLevel(logrus.ErrorLevel)
	case verbose:
		log.SetLevel(logrus.DebugLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}
	return log
}

// lineFormatter prints one plain line per entry. Warnings and errors are
// prefixed with their level, as in "warning: ...".
type lineFormatter struct{}

func (f *lineFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	if entry.Level <= logrus.WarnLevel {
		b.WriteString(entry.Level.String())
		b.WriteString(": ")
	}
	b.WriteString(entry.Message)
	b.WriteByte('\n')
	return b.Bytes(), nil
}
