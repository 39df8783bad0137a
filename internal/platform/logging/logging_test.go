package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	log, err := New("chatty")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !log.Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("expected info to be enabled")
	}
	if log.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected debug to be disabled")
	}
}

func TestNew_Debug(t *testing.T) {
	log, err := New(" DEBUG ")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !log.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected debug to be enabled")
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("expected a logger")
	}
}
