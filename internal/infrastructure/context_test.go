package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceIDRoundTrip(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))

	ctx := WithTraceID(context.Background(), "req-42")
	assert.Equal(t, "req-42", GetTraceID(ctx))
}

func TestLoggerWithContext(t *testing.T) {
	tests := []struct {
		name    string
		ctx     context.Context
		wantID  string
		present bool
	}{
		{name: "trace id bound", ctx: WithTraceID(context.Background(), "req-42"), wantID: "req-42", present: true},
		{name: "no trace id", ctx: context.Background()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			base := slog.New(slog.NewJSONHandler(&buf, nil))

			LoggerWithContext(tt.ctx, base).Info("export generated")

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			id, ok := entry["trace_id"]
			assert.Equal(t, tt.present, ok)
			if tt.present {
				assert.Equal(t, tt.wantID, id)
			}
		})
	}
}

func TestLoggerWithContext_NilUsesGlobal(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	var buf bytes.Buffer
	globalLogger = slog.New(&traceHandler{Handler: slog.NewJSONHandler(&buf, nil)})

	LoggerWithContext(WithTraceID(context.Background(), "req-7"), nil).Info("summary served")

	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte(`"trace_id"`)))
	assert.Contains(t, buf.String(), `"trace_id":"req-7"`)
}
