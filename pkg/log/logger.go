// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Logger describes a logger to be used in acpid.
type Logger interface {
	// Infof logs a progress message.
	Infof(format string, args ...interface{})

	// Warnf logs an warning message.
	Warnf(format string, args ...interface{})

	// Errorf logs an error message.
	Errorf(format string, args ...interface{})

	// Fatalf logs a fatal message and immediately exits the application
	// with os.Exit.
	Fatalf(format string, args ...interface{})
}

// Level is the least severe kind of message a Logger returned by NewLogger
// emits. Fatal messages are always emitted.
type Level int

// Supported levels, from the most to the least severe.
const (
	LevelError = Level(iota)
	LevelWarn
	LevelInfo
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelInfo:
		return "info"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel parses the name of a level as returned by Level.String.
func ParseLevel(s string) (Level, error) {
	for l := LevelError; l <= LevelInfo; l++ {
		if strings.EqualFold(s, l.String()) {
			return l, nil
		}
	}
	return LevelInfo, fmt.Errorf("unknown log level '%s'", s)
}

// DefaultLogger is the logger used by default everywhere within acpid.
var DefaultLogger Logger

func init() {
	DefaultLogger = NewLogger(os.Stderr, LevelInfo)
}

// NewLogger returns a Logger writing the messages at least as severe as
// level to w.
func NewLogger(w io.Writer, level Level) Logger {
	return logWrapper{Logger: log.New(w, "", log.LstdFlags), Level: level}
}

type logWrapper struct {
	Logger *log.Logger
	Level  Level
}

func (logger logWrapper) printf(level Level, tag, format string, args ...interface{}) {
	if level > logger.Level {
		return
	}
	logger.Logger.Printf("[acpid]["+tag+"] "+format, args...)
}

// Infof implements Logger.
func (logger logWrapper) Infof(format string, args ...interface{}) {
	logger.printf(LevelInfo, "INFO", format, args...)
}

// Warnf implements Logger.
func (logger logWrapper) Warnf(format string, args ...interface{}) {
	logger.printf(LevelWarn, "WARN", format, args...)
}

// Errorf implements Logger.
func (logger logWrapper) Errorf(format string, args ...interface{}) {
	logger.printf(LevelError, "ERROR", format, args...)
}

// Fatalf implements Logger.
func (logger logWrapper) Fatalf(format string, args ...interface{}) {
	logger.Logger.Fatalf("[acpid][FATAL] "+format, args...)
}

// Infof logs a progress message.
func Infof(format string, args ...interface{}) {
	DefaultLogger.Infof(format, args...)
}

// Warnf logs an warning message.
func Warnf(format string, args ...interface{}) {
	DefaultLogger.Warnf(format, args...)
}

// Errorf logs an error message.
func Errorf(format string, args ...interface{}) {
	DefaultLogger.Errorf(format, args...)
}

// Fatalf logs a fatal message and immediately exits the application
// with os.Exit (which is expected to be called by the DefaultLogger.Fatalf).
func Fatalf(format string, args ...interface{}) {
	DefaultLogger.Fatalf(format, args...)
}
