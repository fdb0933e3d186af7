package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// InstrumentationWriter renders updates in the raw text form printed by
// "am instrument -r": one "KEY: name=value" line per bundle entry followed by
// the code line.
type InstrumentationWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewInstrumentationWriter writes to w.
func NewInstrumentationWriter(w io.Writer) *InstrumentationWriter {
	return &InstrumentationWriter{w: w}
}

// SendStatus writes an INSTRUMENTATION_STATUS block.
func (iw *InstrumentationWriter) SendStatus(code Code, status Status) error {
	return iw.write("INSTRUMENTATION_STATUS", "INSTRUMENTATION_STATUS_CODE", int(code), status)
}

// Finish writes the INSTRUMENTATION_RESULT block.
func (iw *InstrumentationWriter) Finish(resultCode int, results Status) error {
	return iw.write("INSTRUMENTATION_RESULT", "INSTRUMENTATION_CODE", resultCode, results)
}

func (iw *InstrumentationWriter) write(prefix, codePrefix string, code int, status Status) error {
	iw.mu.Lock()
	defer iw.mu.Unlock()
	bw := bufio.NewWriter(iw.w)
	for _, k := range status.Keys() {
		fmt.Fprintf(bw, "%s: %s=%s\n", prefix, k, status.String(k))
	}
	fmt.Fprintf(bw, "%s: %d\n", codePrefix, code)
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write instrumentation status: %w", err)
	}
	return nil
}

// jsonUpdate is the line schema written by JSONWriter.
type jsonUpdate struct {
	Type   string `json:"type"`
	Code   int    `json:"code"`
	Status Status `json:"status"`
}

// JSONWriter writes one JSON object per update.
type JSONWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONWriter writes to w.
func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{enc: json.NewEncoder(w)}
}

// SendStatus writes a "status" line.
func (jw *JSONWriter) SendStatus(code Code, status Status) error {
	return jw.encode(jsonUpdate{Type: "status", Code: int(code), Status: status})
}

// Finish writes a "result" line.
func (jw *JSONWriter) Finish(resultCode int, results Status) error {
	return jw.encode(jsonUpdate{Type: "result", Code: resultCode, Status: results})
}

func (jw *JSONWriter) encode(u jsonUpdate) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()
	if err := jw.enc.Encode(u); err != nil {
		return fmt.Errorf("failed to encode status update: %w", err)
	}
	return nil
}
