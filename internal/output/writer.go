// Package output writes analysis records in YAML or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/lgbarn/gambit/internal/errors"
)

// Supported output formats.
const (
	FormatYAML  = "yaml"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
)

// Record is the analysis of one position.
type Record struct {
	FEN       string   `yaml:"fen" json:"fen"`
	Depth     int      `yaml:"depth,omitempty" json:"depth,omitempty"`
	CP        *int     `yaml:"cp,omitempty" json:"cp,omitempty"`
	Mate      *int     `yaml:"mate,omitempty" json:"mate,omitempty"`
	Best      string   `yaml:"best,omitempty" json:"best,omitempty"`
	PV        []string `yaml:"pv,omitempty" json:"pv,omitempty"`
	Duplicate bool     `yaml:"duplicate,omitempty" json:"duplicate,omitempty"`
	Error     string   `yaml:"error,omitempty" json:"error,omitempty"`
}

// RecordWriter is the interface for writing records to output.
// Different implementations handle different formats.
type RecordWriter interface {
	// WriteRecord writes a single record to the output.
	WriteRecord(rec Record) error

	// Flush flushes any buffered data to the underlying writer.
	Flush() error

	// Close closes the writer and releases any resources.
	// For batch writers (like JSON), this also writes any pending output.
	Close() error
}

// NewWriter returns a RecordWriter for format.
func NewWriter(format string, w io.Writer) (RecordWriter, error) {
	switch format {
	case "", FormatYAML:
		return NewYAMLWriter(w), nil
	case FormatJSON:
		return NewJSONWriter(w), nil
	case FormatJSONL:
		return NewJSONWriterSingle(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q: %w", format, errors.ErrInvalidConfig)
	}
}

// YAMLWriter writes each record as its own YAML document.
type YAMLWriter struct {
	enc *yaml.Encoder
}

// NewYAMLWriter creates a new YAML writer.
func NewYAMLWriter(w io.Writer) *YAMLWriter {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	return &YAMLWriter{enc: enc}
}

// WriteRecord writes rec as a YAML document.
func (yw *YAMLWriter) WriteRecord(rec Record) error {
	return yw.enc.Encode(rec)
}

// Flush is a no-op; documents are written as they are encoded.
func (yw *YAMLWriter) Flush() error {
	return nil
}

// Close finishes the YAML stream.
func (yw *YAMLWriter) Close() error {
	return yw.enc.Close()
}

// JSONOutput is the document a batching JSONWriter produces.
type JSONOutput struct {
	Records []Record `json:"records"`
}

// JSONWriter writes records in JSON format.
// It buffers records and writes them as a JSON array on Close or Flush.
type JSONWriter struct {
	w       io.Writer
	records []Record
	single  bool // If true, write each record immediately as one line
}

// NewJSONWriter creates a new JSON writer.
// By default, it batches records and writes them as an array on Close().
func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{
		w:       w,
		records: make([]Record, 0),
	}
}

// NewJSONWriterSingle creates a JSON writer that writes one record per line.
func NewJSONWriterSingle(w io.Writer) *JSONWriter {
	return &JSONWriter{
		w:      w,
		single: true,
	}
}

// WriteRecord buffers a record for JSON output (or writes immediately in single mode).
func (jw *JSONWriter) WriteRecord(rec Record) error {
	if jw.single {
		return json.NewEncoder(jw.w).Encode(rec)
	}
	jw.records = append(jw.records, rec)
	return nil
}

// Flush writes all buffered records as a JSON array.
func (jw *JSONWriter) Flush() error {
	if jw.single || len(jw.records) == 0 {
		return nil
	}

	enc := json.NewEncoder(jw.w)
	enc.SetIndent("", "  ")
	err := enc.Encode(JSONOutput{Records: jw.records})

	// Clear buffer after writing
	jw.records = jw.records[:0]

	return err
}

// Close flushes and closes the JSON writer.
func (jw *JSONWriter) Close() error {
	return jw.Flush()
}
