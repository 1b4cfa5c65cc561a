package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/daehwan-oh/coverfact/internal/model"
)

// ParityStatus tiers the extracted-count delta against the baseline.
type ParityStatus string

const (
	ParityPass ParityStatus = "pass"
	ParityWarn ParityStatus = "warn"
	ParityFail ParityStatus = "fail"
)

// Baseline is the persisted fact count of a prior run, stored beside the
// fact stream.
type Baseline struct {
	Count     int       `json:"count"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ParityReport compares this run's extracted count against the baseline.
type ParityReport struct {
	Extracted int          `json:"extracted"`
	Baseline  int          `json:"baseline"`
	DeltaPct  float64      `json:"delta_pct"`
	Status    ParityStatus `json:"status"`
	Anomalies []string     `json:"anomalies,omitempty"`
	Skipped   []string     `json:"skipped_rows,omitempty"`
}

// CompareParity tiers the count delta. A missing baseline (first run)
// passes and simply records the new count.
func CompareParity(extracted int, baseline *Baseline, cfg model.ParityConfig) ParityReport {
	r := ParityReport{Extracted: extracted, Status: ParityPass}
	if baseline == nil || baseline.Count == 0 {
		return r
	}
	r.Baseline = baseline.Count
	delta := float64(extracted-baseline.Count) / float64(baseline.Count)
	if delta < 0 {
		r.DeltaPct = -delta
	} else {
		r.DeltaPct = delta
	}
	switch {
	case r.DeltaPct > cfg.FailDelta:
		r.Status = ParityFail
	case r.DeltaPct > cfg.WarnDelta:
		r.Status = ParityWarn
	}
	return r
}

// LoadBaseline reads a stored baseline; a missing file returns nil.
func LoadBaseline(path string) (*Baseline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read baseline: %w", err)
	}
	var b Baseline
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse baseline %s: %w", path, err)
	}
	return &b, nil
}

// SaveBaseline stores the run's count for the next parity comparison.
func SaveBaseline(path string, count int) error {
	b := Baseline{Count: count, UpdatedAt: time.Now().UTC()}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write baseline: %w", err)
	}
	return nil
}
