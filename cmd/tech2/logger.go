package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/pterm/pterm"
	"gopkg.in/natefinch/lumberjack.v2"
)

// cliLogger mirrors library log events to the console via pterm and to a
// rotating log file. It satisfies the Logger interface the library
// packages accept.
type cliLogger struct {
	file  *log.Logger
	debug bool
}

func newLogger(path string, debug bool) *cliLogger {
	if debug {
		pterm.EnableDebugMessages()
	}
	return &cliLogger{
		file: log.New(&lumberjack.Logger{
			Filename:   path,
			MaxSize:    5, // megabytes
			MaxBackups: 3,
			MaxAge:     30, // days
		}, "", log.LstdFlags),
		debug: debug,
	}
}

func (l *cliLogger) Debug(msg string, keysAndValues ...interface{}) {
	line := format(msg, keysAndValues)
	pterm.Debug.Println(line)
	if l.debug {
		l.file.Println("DEBUG " + line)
	}
}

func (l *cliLogger) Info(msg string, keysAndValues ...interface{}) {
	line := format(msg, keysAndValues)
	pterm.Info.Println(line)
	l.file.Println("INFO " + line)
}

func (l *cliLogger) Error(msg string, keysAndValues ...interface{}) {
	line := format(msg, keysAndValues)
	pterm.Error.Println(line)
	l.file.Println("ERROR " + line)
}

// format renders a message and its key-value pairs as a single line.
func format(msg string, keysAndValues []interface{}) string {
	if len(keysAndValues) == 0 {
		return msg
	}

	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fmt.Fprintf(&b, " %v=%v", keysAndValues[i], keysAndValues[i+1])
	}
	return b.String()
}
