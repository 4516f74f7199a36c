package slog

import "testing"

func TestLevelString(t *testing.T) {
	cases := map[LogLevel]string{
		LevelDebug: "DEBUG",
		LevelInfo:  "INFO",
		LevelWarn:  "WARN",
		LevelError: "ERROR",
	}
	for level, want := range cases {
		if got := level.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", level, got, want)
		}
	}
}

func TestFacilityLoggerDoesNotPanic(t *testing.T) {
	l := NewFacility("test", "a test facility")
	l.Debugf("debug %d", 1)
	l.Infof("info %d", 1)
	l.Warnln("warn", 1)
}

func TestAddHandlerReceivesWarnAndAbove(t *testing.T) {
	var got []string
	AddHandler(LevelWarn, func(level LogLevel, msg string) {
		got = append(got, msg)
	})

	l := New()
	l.Infof("info, should not be recorded by the warn handler")
	l.Warnf("warn, should be recorded")

	found := false
	for _, g := range got {
		if g == "warn, should be recorded" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected handler to observe the warn line, got %v", got)
	}
}
