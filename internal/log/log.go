//nolint:revive // Package name kept as "log" for stable internal imports.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

var (
	mu        sync.Mutex
	debugMode           = false
	stdout    io.Writer = os.Stdout
	stderr    io.Writer = os.Stderr
	exit                = os.Exit
)

// SetDebugMode enables or disables debug logging
func SetDebugMode(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	debugMode = enabled
}

// SetOutput redirects informational and error output. A nil writer keeps the current one.
func SetOutput(out, errOut io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if out != nil {
		stdout = out
	}
	if errOut != nil {
		stderr = errOut
	}
}

// printLine writes one prefixed line. Import workers log concurrently, so writes are serialized.
func printLine(toErr bool, prefix string, format string, elem ...any) {
	mu.Lock()
	defer mu.Unlock()
	w := stdout
	if toErr {
		w = stderr
	}
	fmt.Fprintln(w, prefix+fmt.Sprintf(format, elem...))
}

func debugEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return debugMode
}

// Debug logs debug messages when debug mode is enabled
func Debug(format string, elem ...any) {
	if debugEnabled() {
		printLine(false, color.CyanString("[DEBUG] "), format, elem...)
	}
}

// DebugH2 logs indented debug messages when debug mode is enabled
func DebugH2(format string, elem ...any) {
	if debugEnabled() {
		printLine(false, color.CyanString("  [DEBUG] "), format, elem...)
	}
}

// DebugH3 logs more indented debug messages when debug mode is enabled
func DebugH3(format string, elem ...any) {
	if debugEnabled() {
		printLine(false, color.CyanString("    [DEBUG] "), format, elem...)
	}
}

// Info logs an informational message
func Info(format string, elem ...any) {
	printLine(false, color.BlueString("[x] "), format, elem...)
}

// InfoH2 logs an indented informational message
func InfoH2(format string, elem ...any) {
	printLine(false, color.GreenString("  [x] "), format, elem...)
}

// InfoH3 logs a double-indented informational message
func InfoH3(format string, elem ...any) {
	printLine(false, color.YellowString("    [x] "), format, elem...)
}

// Warn logs a warning to stderr
func Warn(format string, elem ...any) {
	printLine(true, color.MagentaString("[!] "), format, elem...)
}

// Error logs an error message to stderr
func Error(format string, elem ...any) {
	printLine(true, color.RedString("[x] "), format, elem...)
}

// ErrorH2 logs an indented error message to stderr
func ErrorH2(format string, elem ...any) {
	printLine(true, color.RedString("  [x] "), format, elem...)
}

// Fatal logs an error message to stderr and exits the program. Multi-line messages get
// one prefix per line.
func Fatal(format string, elem ...any) {
	message := strings.TrimSpace(fmt.Sprintf(format, elem...))
	if message == "" {
		message = "fatal error occurred"
	}
	for _, line := range strings.Split(message, "\n") {
		printLine(true, color.RedString("[x] "), "%s", line)
	}
	exit(1)
}
