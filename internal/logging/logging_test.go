// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	if i := strings.LastIndex(line, "\n"); i >= 0 {
		line = line[i+1:]
	}
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(line), &out); err != nil {
		t.Fatalf("log line %q is not JSON: %v", line, err)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInit(t *testing.T) {
	prev := Logger()
	t.Cleanup(func() {
		SetLogger(prev)
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	})

	var buf bytes.Buffer
	Init(Config{Level: "warn", Service: "synapse", Output: &buf})

	Info().Msg("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info written at warn level: %s", buf.String())
	}

	log := WithComponent("index")
	log.Warn().Int("vectors", 3).Msg("slow build")
	line := decodeLine(t, &buf)
	for k, want := range map[string]interface{}{
		"service":   "synapse",
		"component": "index",
		"level":     "warn",
		"message":   "slow build",
		"vectors":   float64(3),
	} {
		if line[k] != want {
			t.Errorf("%s = %v, want %v", k, line[k], want)
		}
	}
	if _, ok := line["time"]; !ok {
		t.Error("time field missing")
	}

	buf.Reset()
	Init(Config{Level: "info", NoTimestamp: true, Output: &buf})
	Info().Msg("plain")
	line = decodeLine(t, &buf)
	if _, ok := line["time"]; ok {
		t.Error("time field present with NoTimestamp")
	}
	if _, ok := line["service"]; ok {
		t.Error("service field present without Service")
	}
}

func TestCtxAddsIDs(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), NewTestLogger(&buf))
	ctx = ContextWithRequestID(ctx, "req-1")
	ctx = ContextWithCorrelationID(ctx, "corr-1")

	Ctx(ctx).Info().Msg("hello")

	entry := decodeLine(t, &buf)
	if entry["request_id"] != "req-1" {
		t.Errorf("request_id = %v, want req-1", entry["request_id"])
	}
	if entry["correlation_id"] != "corr-1" {
		t.Errorf("correlation_id = %v, want corr-1", entry["correlation_id"])
	}
	if entry["message"] != "hello" {
		t.Errorf("message = %v, want hello", entry["message"])
	}
}

func TestContextIDsAbsent(t *testing.T) {
	ctx := context.Background()
	if RequestIDFromContext(ctx) != "" || CorrelationIDFromContext(ctx) != "" {
		t.Error("expected empty IDs on bare context")
	}
	if got := CorrelationIDFromContext(ContextWithNewCorrelationID(ctx)); len(got) != 8 {
		t.Errorf("generated correlation ID %q, want 8 chars", got)
	}
	if got := GenerateRequestID(); len(got) != 36 {
		t.Errorf("GenerateRequestID() = %q, want UUID", got)
	}
}

func TestSlogHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewSlogHandler(NewTestLogger(&buf)))

	logger.With("service", "refresh").WithGroup("event").Warn("service failed",
		"attempt", 3,
		"error", errors.New("boom"),
	)

	entry := decodeLine(t, &buf)
	if entry["level"] != "warn" {
		t.Errorf("level = %v, want warn", entry["level"])
	}
	if entry["service"] != "refresh" {
		t.Errorf("service = %v, want refresh", entry["service"])
	}
	if entry["event.attempt"] != float64(3) {
		t.Errorf("event.attempt = %v, want 3", entry["event.attempt"])
	}
	if entry["event.error"] != "boom" {
		t.Errorf("event.error = %v, want boom", entry["event.error"])
	}
}

func TestWatermillAdapter(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewWatermillAdapter(NewTestLogger(&buf)).With(watermill.LogFields{"topic": "content.refresh"})

	adapter.Error("handler failed", errors.New("nope"), watermill.LogFields{"message_uuid": "m-1"})

	entry := decodeLine(t, &buf)
	if entry["level"] != "error" {
		t.Errorf("level = %v, want error", entry["level"])
	}
	if entry["topic"] != "content.refresh" || entry["message_uuid"] != "m-1" {
		t.Errorf("fields missing: %v", entry)
	}
	if entry["error"] != "nope" {
		t.Errorf("error = %v, want nope", entry["error"])
	}
}
