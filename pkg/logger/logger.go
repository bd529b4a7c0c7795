package logger

import (
	"log"
	"os"
	"strings"
)

const (
	DEBUG int = iota
	INFO
	WARNING
	ERROR
	SILENCE
)

type Logger interface {
	Debugf(msg string, a ...any)
	Infof(msg string, a ...any)
	Warnf(msg string, a ...any)
	Errorf(msg string, a ...any)
}

type defaultLogger struct {
	level int
	inner *log.Logger
}

func NewLogger(level int) *defaultLogger {
	return &defaultLogger{
		level: level,
		inner: log.New(os.Stderr, "", log.LstdFlags),
	}
}

// ParseLevel converts a level name from configuration to a level value. An
// unknown name falls back to INFO.
func ParseLevel(name string) int {
	switch strings.ToUpper(name) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARNING", "WARN":
		return WARNING
	case "ERROR":
		return ERROR
	case "SILENCE":
		return SILENCE
	}

	return INFO
}

func (l *defaultLogger) Debugf(msg string, a ...any) {
	if l.level <= DEBUG {
		l.inner.Printf("DEBUG | "+msg+"\n", a...)
	}
}

func (l *defaultLogger) Infof(msg string, a ...any) {
	if l.level <= INFO {
		l.inner.Printf("INFO | "+msg+"\n", a...)
	}
}

func (l *defaultLogger) Warnf(msg string, a ...any) {
	if l.level <= WARNING {
		l.inner.Printf("WARN | "+msg+"\n", a...)
	}
}

func (l *defaultLogger) Errorf(msg string, a ...any) {
	if l.level <= ERROR {
		l.inner.Printf("ERROR | "+msg+"\n", a...)
	}
}
