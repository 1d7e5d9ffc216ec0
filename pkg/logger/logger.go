package logger

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/carismo/shopmail/pkg/interfaces"
)

type ColorLogger struct{}

func NewLogger() interfaces.Logger {
	return &ColorLogger{}
}

var levelColors = map[string]func(...interface{}) string{
	"INFO":  color.New(color.FgGreen).SprintFunc(),
	"WARN":  color.New(color.FgYellow).SprintFunc(),
	"ERROR": color.New(color.FgRed).SprintFunc(),
	"DEBUG": color.New(color.FgCyan).SprintFunc(),
}

func (l *ColorLogger) log(level, message string) {
	out := os.Stdout
	if level == "ERROR" {
		out = os.Stderr
	}
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(out, "%s %s %s\n", timestamp, levelColors[level](level), message)
}

func (l *ColorLogger) Info(message string) {
	l.log("INFO", message)
}

func (l *ColorLogger) Error(message string) {
	l.log("ERROR", message)
}

func (l *ColorLogger) Warn(message string) {
	l.log("WARN", message)
}

func (l *ColorLogger) Debug(message string) {
	l.log("DEBUG", message)
}
