package config

import (
	"testing"
	"time"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("KI3DEX_TEST_STR", "  value ")
	t.Setenv("KI3DEX_TEST_INT", "42")
	t.Setenv("KI3DEX_TEST_BAD_INT", "forty")
	t.Setenv("KI3DEX_TEST_FLOAT", "2.5")
	t.Setenv("KI3DEX_TEST_DUR", "90s")
	t.Setenv("KI3DEX_TEST_BAD_DUR", "soon")
	t.Setenv("KI3DEX_TEST_EMPTY", "   ")

	if got := EnvString("KI3DEX_TEST_STR", "x"); got != "value" {
		t.Fatalf("EnvString: got %q", got)
	}
	if got := EnvString("KI3DEX_TEST_EMPTY", "x"); got != "x" {
		t.Fatalf("EnvString fallback: got %q", got)
	}
	if got := EnvInt("KI3DEX_TEST_INT", 1); got != 42 {
		t.Fatalf("EnvInt: got %d", got)
	}
	if got := EnvInt("KI3DEX_TEST_BAD_INT", 1); got != 1 {
		t.Fatalf("EnvInt fallback: got %d", got)
	}
	if got := EnvFloat("KI3DEX_TEST_FLOAT", 1); got != 2.5 {
		t.Fatalf("EnvFloat: got %v", got)
	}
	if got := EnvDuration("KI3DEX_TEST_DUR", time.Second); got != 90*time.Second {
		t.Fatalf("EnvDuration: got %v", got)
	}
	if got := EnvDuration("KI3DEX_TEST_BAD_DUR", time.Second); got != time.Second {
		t.Fatalf("EnvDuration fallback: got %v", got)
	}
}
