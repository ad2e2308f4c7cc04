package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestInit_ReturnsUsableLogger(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var buf bytes.Buffer
	log := Init(Options{Level: "debug", Output: &buf})
	log.Error().Str("component", "bootstrap").Msg("configuration")

	out := buf.String()
	if !strings.Contains(out, `"configuration"`) {
		t.Fatalf("message not written: %s", out)
	}
	if !strings.Contains(out, `"component":"bootstrap"`) {
		t.Fatalf("field not written: %s", out)
	}
}

func TestInit_OnlyFirstCallWins(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var first, second bytes.Buffer
	Init(Options{Level: "debug", Output: &first})
	Init(Options{Level: "debug", Output: &second})

	log := Get()
	log.Info().Msg("routed")
	if first.Len() == 0 {
		t.Fatalf("expected output on the first writer")
	}
	if second.Len() != 0 {
		t.Fatalf("second Init must have no effect")
	}
}

func TestGet_PanicsBeforeInit(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic when Get precedes Init")
		}
	}()
	Get()
}
