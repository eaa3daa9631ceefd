// Package narrative holds the operation log: human-readable lines tagged
// with a severity class, produced as side effects of simulation steps.
package narrative

import (
	"fmt"
	"time"
)

// Severity classifies a narrative line for colouring.
type Severity int

const (
	System Severity = iota
	Info
	Warning
	Success
	Error
)

// String returns the lowercase severity name
func (s Severity) String() string {
	switch s {
	case System:
		return "system"
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Entry is one line of the operation log.
type Entry struct {
	Time     time.Time
	Severity Severity
	Text     string
}

// New returns an entry stamped with the current time.
func New(sev Severity, text string) Entry {
	return Entry{Time: time.Now(), Severity: sev, Text: text}
}

// Newf is New with fmt.Sprintf formatting.
func Newf(sev Severity, format string, args ...any) Entry {
	return New(sev, fmt.Sprintf(format, args...))
}

// Stamp renders the entry's time the way the terminal log prefixes lines.
func (e Entry) Stamp() string {
	return e.Time.Format("[15:04:05] ")
}

// String formats the entry as a single log line.
func (e Entry) String() string {
	return fmt.Sprintf("%s%-7s %s", e.Stamp(), e.Severity, e.Text)
}

// Log is a bounded, append-only list of entries. When full, the oldest
// entries are dropped.
type Log struct {
	limit   int
	entries []Entry
	total   int
}

// DefaultLimit bounds the log kept in memory by the terminal UI.
const DefaultLimit = 500

// NewLog creates a log holding at most limit entries. limit <= 0 uses
// DefaultLimit.
func NewLog(limit int) *Log {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Log{limit: limit}
}

// Append adds e to the log.
func (l *Log) Append(e Entry) {
	l.total++
	l.entries = append(l.entries, e)
	if over := len(l.entries) - l.limit; over > 0 {
		l.entries = append(l.entries[:0:0], l.entries[over:]...)
	}
}

// Entries returns a copy of the retained entries, oldest first.
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Tail returns up to n of the most recent entries, oldest first.
func (l *Log) Tail(n int) []Entry {
	if n <= 0 || n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]Entry, n)
	copy(out, l.entries[len(l.entries)-n:])
	return out
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	return len(l.entries)
}

// Total returns the number of entries ever appended.
func (l *Log) Total() int {
	return l.total
}
