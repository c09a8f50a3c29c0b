// Package output serialises records as one JSON array per line.
package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/ukaji3/sheetpipe/pkg/sheetpipe/models"
)

// Sink receives records. A nil payload produces a one-element record.
type Sink interface {
	Emit(typ models.RecordType, payload any) error
}

// Emitter writes records to an io.Writer, one line each.
// It is safe for concurrent use.
type Emitter struct {
	mu  sync.Mutex
	w   *bufio.Writer
	enc *json.Encoder
}

// NewEmitter returns an Emitter writing to w.
func NewEmitter(w io.Writer) *Emitter {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	return &Emitter{w: bw, enc: enc}
}

// Emit encodes one record followed by a newline.
func (e *Emitter) Emit(typ models.RecordType, payload any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec := []any{typ}
	if payload != nil {
		rec = append(rec, payload)
	}
	if err := e.enc.Encode(rec); err != nil {
		return fmt.Errorf("emit %q: %w", typ, err)
	}
	return nil
}

// Flush writes any buffered records.
func (e *Emitter) Flush() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.w.Flush()
}

// LineFlusher wraps a Sink and flushes after every record, so that a peer
// driving the writer interactively sees each acknowledgement immediately.
type LineFlusher struct {
	*Emitter
}

// Emit implements Sink.
func (l LineFlusher) Emit(typ models.RecordType, payload any) error {
	if err := l.Emitter.Emit(typ, payload); err != nil {
		return err
	}
	return l.Flush()
}

// Recorder keeps records in memory.
type Recorder struct {
	mu      sync.Mutex
	Records []models.Record
}

// Emit implements Sink.
func (r *Recorder) Emit(typ models.RecordType, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Records = append(r.Records, models.Record{Type: typ, Payload: payload})
	return nil
}

// Replay emits every recorded record to dst in order.
func (r *Recorder) Replay(dst Sink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.Records {
		if err := dst.Emit(rec.Type, rec.Payload); err != nil {
			return err
		}
	}
	return nil
}
