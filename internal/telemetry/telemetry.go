// Package telemetry writes agent events as JSON lines.
//
// Events carry sizes, counts and durations only; raw tool arguments and
// results are never written.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventsFile is the file name events are appended to inside the emitter dir.
const EventsFile = "events.jsonl"

// Emitter appends events to <dir>/events.jsonl. A nil or disabled Emitter drops events.
type Emitter struct {
	mu      sync.Mutex
	dir     string
	enabled bool
	now     func() time.Time
}

// New returns an emitter writing under dir when enabled is true.
func New(enabled bool, dir string) *Emitter {
	if dir == "" {
		dir = ".agent"
	}
	return &Emitter{dir: dir, enabled: enabled, now: time.Now}
}

// Enabled reports whether events are written.
func (e *Emitter) Enabled() bool { return e != nil && e.enabled }

// Path returns the events file path.
func (e *Emitter) Path() string { return filepath.Join(e.dir, EventsFile) }

// Emit writes one JSON line with the given fields plus "event" and "time".
// Failures are reported on stderr and never returned to the caller.
func (e *Emitter) Emit(name string, fields map[string]any) {
	if !e.Enabled() {
		return
	}

	// Copy so callers' maps aren't mutated.
	m := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		m[k] = v
	}
	m["time"] = e.now().UTC().Format(time.RFC3339Nano)
	m["event"] = name

	b, err := json.Marshal(m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: marshal: %v\n", err)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: mkdir %s: %v\n", e.dir, err)
		return
	}
	f, err := os.OpenFile(e.Path(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: open %s: %v\n", e.Path(), err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(b, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: write %s: %v\n", e.Path(), err)
	}
}
