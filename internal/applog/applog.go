// Package applog is the engine's ambient logging, grounded on the
// teacher's logging.go/logMismatch (plain log.Printf, column-aligned
// mismatch tables, no third-party logging library — the teacher never
// imports one, so neither does this package; see DESIGN.md).
package applog

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/goodmock/goodmock/internal/matching"
)

// Logger wraps the standard logger with the engine's access-log and
// mismatch-diagnostic conventions. AccessDisabled mirrors the CLI's
// --disable-access-log flag.
type Logger struct {
	std            *log.Logger
	AccessDisabled bool
}

// New creates a Logger writing to stderr, matching the teacher's default
// log destination.
func New() *Logger {
	return &Logger{std: log.New(os.Stderr, "", log.LstdFlags)}
}

// Access logs one served request in a single line.
func (l *Logger) Access(method, path string, status int, disposition string, elapsedMs uint64) {
	if l.AccessDisabled {
		return
	}
	l.std.Printf("%s %s -> %d (%s, %dms)", method, path, status, disposition, elapsedMs)
}

// Errorf logs a formatted error.
func (l *Logger) Errorf(format string, args ...any) {
	l.std.Printf("ERROR "+format, args...)
}

// Infof logs a formatted informational line.
func (l *Logger) Infof(format string, args ...any) {
	l.std.Printf(format, args...)
}

const colWidth = 58

// Mismatch renders a WireMock-style side-by-side diff table for a failed
// match, directly modeled on the teacher's logMismatch (logging.go):
// truncate each side to colWidth and pad so expected/actual line up.
func (l *Logger) Mismatch(method, path string, report matching.Report) {
	if len(report.Mismatches) == 0 {
		return
	}
	l.std.Printf("no mock matched %s %s (closest distance %d):", method, path, report.Distance)
	header := fmt.Sprintf("%-*s | %s", colWidth, "expected", "actual")
	l.std.Printf("  %s", header)
	l.std.Printf("  %s", strings.Repeat("-", len(header)))
	for _, m := range report.Mismatches {
		l.std.Printf("  [%s] %-*s | %s", m.Family, colWidth, truncate(m.Expected, colWidth), truncate(m.Actual, colWidth))
	}
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	return s[:width-3] + "..."
}
