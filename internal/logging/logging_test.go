package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/lazypower/reminderparrot/internal/config"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(config.LogConfig{Level: "debug", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("NewWithWriter: %v", err)
	}
	if log.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", log.GetLevel())
	}

	log.WithField("reminder", "r1").Info("hello")
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %q", buf.String())
	}
	if entry["msg"] != "hello" || entry["reminder"] != "r1" {
		t.Errorf("entry = %v", entry)
	}
}

func TestNewTextDefaults(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(config.LogConfig{}, &buf)
	if err != nil {
		t.Fatalf("NewWithWriter: %v", err)
	}
	log.Debug("hidden")
	log.Info("shown")
	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("output = %q", out)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	if _, err := NewWithWriter(config.LogConfig{Level: "loud"}, &bytes.Buffer{}); err == nil {
		t.Error("expected error for bad level")
	}
	if _, err := NewWithWriter(config.LogConfig{Format: "xml"}, &bytes.Buffer{}); err == nil {
		t.Error("expected error for bad format")
	}
}
