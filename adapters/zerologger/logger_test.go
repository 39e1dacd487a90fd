package zerologger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		record := map[string]any{}
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		out = append(out, record)
	}
	return out
}

func TestLogger_WritesKeyValuePairs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(zerolog.New(&buf))

	logger.Info("credentials_get succeeded", "credentials_id", "cred_1", "duration_ms", 12)
	logger.Error("credentials_get failed", "error", errors.New("boom"), "dangling")

	records := decodeLines(t, &buf)
	if len(records) != 2 {
		t.Fatalf("expected two records, got %d", len(records))
	}
	if records[0]["message"] != "credentials_get succeeded" || records[0]["credentials_id"] != "cred_1" {
		t.Fatalf("unexpected info record %v", records[0])
	}
	if records[1]["level"] != "error" || records[1]["error"] != "boom" || records[1]["arg"] != "dangling" {
		t.Fatalf("unexpected error record %v", records[1])
	}
}

func TestLogger_WithFieldsAndProvider(t *testing.T) {
	var buf bytes.Buffer
	provider := NewProvider(zerolog.New(&buf))

	named := provider.GetLogger("tink.refresh_job")
	withFields := named.(*Logger).WithFields(map[string]any{"credentials_id": "cred_2"})
	withFields.Warn("refresh job requeued")

	records := decodeLines(t, &buf)
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	if records[0]["logger"] != "tink.refresh_job" || records[0]["credentials_id"] != "cred_2" {
		t.Fatalf("unexpected record %v", records[0])
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
	}
	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNew_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(New(Options{Level: "warn", Output: &buf}))
	logger.Info("hidden")
	logger.Warn("shown")

	records := decodeLines(t, &buf)
	if len(records) != 1 || records[0]["message"] != "shown" {
		t.Fatalf("expected only the warn record, got %v", records)
	}
}
