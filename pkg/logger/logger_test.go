package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestWithEmployee_TagsEntries(t *testing.T) {
	var buf bytes.Buffer
	SetupWriter(&buf, false, "info")
	t.Cleanup(func() { zerolog.DefaultContextLogger = nil })

	ctx := WithEmployee(context.Background(), "E1")
	log.Ctx(ctx).Info().Msg("clocked in")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if entry["employee_id"] != "E1" || entry["message"] != "clocked in" {
		t.Fatalf("entry = %v", entry)
	}
}

func TestSetupWriter_Level(t *testing.T) {
	var buf bytes.Buffer
	SetupWriter(&buf, false, "warn")
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		zerolog.DefaultContextLogger = nil
	})

	log.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info logged at warn level: %q", buf.String())
	}
	log.Warn().Msg("shown")
	if buf.Len() == 0 {
		t.Fatalf("warn was not logged")
	}
}

func TestEnrichContextWithLogger_NoSpan(t *testing.T) {
	ctx := context.Background()
	if got := EnrichContextWithLogger(ctx); got != ctx {
		t.Fatalf("context changed without a recording span")
	}
}
