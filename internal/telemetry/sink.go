package telemetry

import "sync"

// Sink accepts one record per control tick. Implementations must not block and must
// swallow their own failures.
type Sink interface {
	Emit(Record)
}

// Nop discards every record.
type Nop struct{}

// Emit implements Sink.
func (Nop) Emit(Record) {}

// Recorder keeps every record in memory. It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	records []Record
}

// Emit implements Sink.
func (r *Recorder) Emit(rec Record) {
	r.mu.Lock()
	r.records = append(r.records, rec)
	r.mu.Unlock()
}

// Records returns a copy of everything emitted so far.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Len returns the number of records emitted.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Multi fans a record out to several sinks.
type Multi []Sink

// Emit implements Sink.
func (m Multi) Emit(rec Record) {
	for _, s := range m {
		s.Emit(rec)
	}
}
