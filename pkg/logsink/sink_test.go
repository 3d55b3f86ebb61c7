package logsink

import (
	"testing"

	"go.uber.org/zap"
)

func TestLevelString(t *testing.T) {
	cases := map[Level]string{
		LevelParseError: "parse_error",
		LevelWarn:       "warn",
		LevelInfo:       "info",
	}
	for level, want := range cases {
		if got := level.String(); got != want {
			t.Fatalf("Level(%d).String() = %q, want %q", level, got, want)
		}
	}
}

func TestZapSinkAggregatesDiagnostics(t *testing.T) {
	sink := NewZapSink(zap.NewNop())

	if sink.Diagnostics() != nil {
		t.Fatal("expected no diagnostics before any Log call")
	}

	sink.Log(LevelInfo, "engine", "layout complete")
	if sink.Diagnostics() != nil {
		t.Fatal("LevelInfo should not be aggregated into Diagnostics")
	}

	sink.Log(LevelParseError, "htmltok", "unexpected-null-character")
	sink.Log(LevelWarn, "cssstyle", "unresolved custom property")

	err := sink.Diagnostics()
	if err == nil {
		t.Fatal("expected a non-nil error after two recoverable reports")
	}
	msg := err.Error()
	if !contains(msg, "parse_error[htmltok]") || !contains(msg, "warn[cssstyle]") {
		t.Fatalf("expected both reports joined in Diagnostics, got %q", msg)
	}
}

func TestNopSinkDiscardsEverything(t *testing.T) {
	// Nop must tolerate every call shape the real Sink interface allows
	// without panicking; it has no state to assert against.
	Nop.Log(LevelParseError, "whatever", "message", zap.String("k", "v"))
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
