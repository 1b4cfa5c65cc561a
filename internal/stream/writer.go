// Package stream writes fact records as JSON Lines. Output is
// deterministic: the same records in the same order produce byte-identical
// files across runs.
package stream

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/daehwan-oh/coverfact/internal/model"
)

// Writer appends one JSON object per line to an output file. Records are
// written in extraction order with no reordering or deduplication.
type Writer struct {
	f   *os.File
	buf *bufio.Writer
	enc *json.Encoder
	n   int
}

// NewWriter creates (truncating) the output file, making parent
// directories as needed.
func NewWriter(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	buf := bufio.NewWriter(f)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	return &Writer{f: f, buf: buf, enc: enc}, nil
}

// Write emits one record as a single line.
func (w *Writer) Write(rec model.FactRecord) error {
	if err := w.enc.Encode(rec); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	w.n++
	return nil
}

// WriteAll emits records in order.
func (w *Writer) WriteAll(recs []model.FactRecord) error {
	for _, rec := range recs {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of records written so far.
func (w *Writer) Count() int { return w.n }

// Close flushes and closes the file.
func (w *Writer) Close() error {
	if err := w.buf.Flush(); err != nil {
		w.f.Close()
		return fmt.Errorf("flush: %w", err)
	}
	return w.f.Close()
}

// FactsPath returns the fact-stream filename for an insurer/variant pair
// under dir.
func FactsPath(dir, insurer, variant string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s_facts.jsonl", insurer, variant))
}

// FragmentsPath returns the fragment-stream filename. Fragments are kept
// out of the primary stream so downstream consumers never join on them.
func FragmentsPath(dir, insurer, variant string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s_fragments.jsonl", insurer, variant))
}

// BaselinePath returns the parity-baseline filename stored beside the fact
// stream.
func BaselinePath(dir, insurer, variant string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s_baseline.json", insurer, variant))
}

// WriteStreams writes the fact and fragment streams for one document. The
// fragment file is written even when empty so its absence is never
// ambiguous.
func WriteStreams(dir, insurer, variant string, facts, fragments []model.FactRecord) (string, string, error) {
	factsPath := FactsPath(dir, insurer, variant)
	fw, err := NewWriter(factsPath)
	if err != nil {
		return "", "", err
	}
	if err := fw.WriteAll(facts); err != nil {
		fw.Close()
		return "", "", err
	}
	if err := fw.Close(); err != nil {
		return "", "", err
	}

	fragPath := FragmentsPath(dir, insurer, variant)
	gw, err := NewWriter(fragPath)
	if err != nil {
		return "", "", err
	}
	if err := gw.WriteAll(fragments); err != nil {
		gw.Close()
		return "", "", err
	}
	if err := gw.Close(); err != nil {
		return "", "", err
	}
	return factsPath, fragPath, nil
}
