// Package observability emits one structured event per core operation: one
// per generate/evaluate call and one per tool invocation. Events never carry
// raw fetched content or credentials.
package observability

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Logger writes one JSON object per line to its sink. A nil Logger is valid
// and discards everything, so call sites never need to guard.
type Logger struct {
	mu  sync.Mutex
	out io.Writer
	now func() time.Time
}

// NewLogger creates a logger writing to out.
func NewLogger(out io.Writer) *Logger {
	return &Logger{out: out, now: time.Now}
}

// Event emits a named event with the given fields.
func (l *Logger) Event(name string, fields map[string]any) {
	if l == nil || l.out == nil {
		return
	}

	record := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		record[k] = v
	}
	record["event"] = name
	record["ts"] = l.now().UTC().Format(time.RFC3339Nano)

	line, err := json.Marshal(record)
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.out.Write(append(line, '\n'))
}

// Generate records the outcome of one profile generation call.
// fingerprintHit is true when the idempotency rule returned an existing
// version instead of creating one.
func (l *Logger) Generate(brandID string, version int, fingerprintHit bool, adapter string, duration time.Duration, outcome string) {
	l.Event("generate", map[string]any{
		"brand_id":        brandID,
		"version":         version,
		"fingerprint_hit": fingerprintHit,
		"adapter":         adapter,
		"duration_ms":     duration.Milliseconds(),
		"outcome":         outcome,
	})
}

// Evaluate records the outcome of one evaluation call.
func (l *Logger) Evaluate(brandID string, profileVersion int, adapter string, duration time.Duration, outcome string) {
	l.Event("evaluate", map[string]any{
		"brand_id":        brandID,
		"profile_version": profileVersion,
		"adapter":         adapter,
		"duration_ms":     duration.Milliseconds(),
		"outcome":         outcome,
	})
}

// ToolInvocation records one model-initiated fetch: the host only, never the
// fetched payload.
func (l *Logger) ToolInvocation(host string, bytes int, outcome string) {
	l.Event("tool_invocation", map[string]any{
		"host":    host,
		"bytes":   bytes,
		"outcome": outcome,
	})
}
