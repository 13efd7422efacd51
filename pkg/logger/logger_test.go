package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestFieldsAreWritten(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf).With(String("component", "reports"))

	log.Info("fetched",
		String("source", "coal"),
		Int("blocks", 3),
		Duration("took", 1500*time.Millisecond),
		Error(errors.New("partial")),
		Bool("cached", false),
	)

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if got["component"] != "reports" || got["source"] != "coal" {
		t.Fatalf("missing string fields: %v", got)
	}
	if got["blocks"] != float64(3) || got["took"] != float64(1500) {
		t.Fatalf("unexpected numeric fields: %v", got)
	}
	if got["error"] != "partial" || got["message"] != "fetched" {
		t.Fatalf("unexpected error/message fields: %v", got)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(&Config{Level: "loud", Output: "stdout"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
