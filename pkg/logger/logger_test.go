package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	l, err := New("")
	if err != nil {
		t.Fatalf("default level: %v", err)
	}
	if !l.Core().Enabled(zapcore.InfoLevel) || l.Core().Enabled(zapcore.DebugLevel) {
		t.Error("default logger should log info but not debug")
	}

	l, err = New("debug")
	if err != nil {
		t.Fatalf("debug level: %v", err)
	}
	if !l.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug logger should log debug")
	}

	if _, err := New("chatty"); err == nil {
		t.Error("expected error for unknown level")
	}
}
