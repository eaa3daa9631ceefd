package narrative

import (
	"strings"
	"testing"
	"time"
)

func TestSeverityString(t *testing.T) {
	tests := []struct {
		sev  Severity
		want string
	}{
		{System, "system"},
		{Info, "info"},
		{Warning, "warning"},
		{Success, "success"},
		{Error, "error"},
		{Severity(42), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.sev.String(); got != tt.want {
				t.Errorf("Severity.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntryString(t *testing.T) {
	e := Entry{
		Time:     time.Date(2024, 1, 2, 13, 4, 5, 0, time.UTC),
		Severity: Success,
		Text:     "Scan complete",
	}
	got := e.String()
	if !strings.HasPrefix(got, "[13:04:05] success") {
		t.Errorf("String() = %q", got)
	}
	if !strings.HasSuffix(got, "Scan complete") {
		t.Errorf("String() = %q", got)
	}
}

func TestNewf(t *testing.T) {
	e := Newf(Info, "Discovered %s node", "ROUTER")
	if e.Text != "Discovered ROUTER node" || e.Severity != Info {
		t.Errorf("Newf() = %+v", e)
	}
	if e.Time.IsZero() {
		t.Error("Newf() should stamp the time")
	}
}

func TestLog_Bounded(t *testing.T) {
	l := NewLog(3)
	for i := 0; i < 5; i++ {
		l.Append(Newf(Info, "line %d", i))
	}

	if l.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", l.Len())
	}
	if l.Total() != 5 {
		t.Errorf("Total() = %d, want 5", l.Total())
	}

	entries := l.Entries()
	if entries[0].Text != "line 2" || entries[2].Text != "line 4" {
		t.Errorf("Entries() = %v", entries)
	}

	tail := l.Tail(2)
	if len(tail) != 2 || tail[0].Text != "line 3" {
		t.Errorf("Tail(2) = %v", tail)
	}
	if len(l.Tail(10)) != 3 {
		t.Error("Tail larger than the log returns everything")
	}
}

func TestNewLog_DefaultLimit(t *testing.T) {
	l := NewLog(0)
	for i := 0; i < DefaultLimit+10; i++ {
		l.Append(New(Info, "x"))
	}
	if l.Len() != DefaultLimit {
		t.Errorf("Len() = %d, want %d", l.Len(), DefaultLimit)
	}
}
