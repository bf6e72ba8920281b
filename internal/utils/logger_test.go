package utils

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn")

	logger.Info("hidden")
	WithComponent(logger, "media").Warn("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "component=media") || !strings.Contains(out, "key=value") {
		t.Errorf("missing fields in %q", out)
	}
}

func TestNewLoggerUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, "loud").Info("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("unknown level should fall back to info, got %q", buf.String())
	}
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if len(a) != 36 || a == b {
		t.Errorf("unexpected ids %q %q", a, b)
	}
}
