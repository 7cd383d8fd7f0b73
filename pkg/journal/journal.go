package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// CellRecord captures one (target, measure) cell of a results grid.
type CellRecord struct {
	Target   int       `json:"target"`
	Measure  string    `json:"measure"`
	Ok       bool      `json:"ok"`
	Reason   string    `json:"reason,omitempty"`
	Message  string    `json:"message,omitempty"`
	Currency string    `json:"currency,omitempty"`
	Values   []float64 `json:"values,omitempty"`
}

// RunRecord captures an end-to-end calculation run for audit and analysis.
type RunRecord struct {
	Timestamp         time.Time      `json:"timestamp"`
	RunNumber         int            `json:"run_number"`
	ValuationDate     string         `json:"valuation_date"`
	ScenarioSet       string         `json:"scenario_set,omitempty"`
	ScenarioCount     int            `json:"scenario_count"`
	ReportingCurrency string         `json:"reporting_currency,omitempty"`
	Targets           int            `json:"targets"`
	Measures          []string       `json:"measures"`
	FailedCells       int            `json:"failed_cells"`
	DurationMs        int64          `json:"duration_ms"`
	Cells             []CellRecord   `json:"cells"`
	Extra             map[string]any `json:"extra,omitempty"`
}

// Writer persists run records to a directory as JSON files (journal style).
// Safe for concurrent use.
type Writer struct {
	dir   string
	mu    sync.Mutex
	seq   int
	nowFn func() time.Time
}

// NewWriter constructs a journal writer.
func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = "journal"
	}
	_ = os.MkdirAll(dir, 0o755)
	return &Writer{dir: dir, nowFn: time.Now}
}

// WriteRun writes a run record to a timestamped JSON file.
func (w *Writer) WriteRun(rec *RunRecord) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("journal: nil record")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if rec.Timestamp.IsZero() {
		rec.Timestamp = w.nowFn()
	}
	w.seq++
	rec.RunNumber = w.seq
	name := fmt.Sprintf("run_%s_%05d.json", rec.Timestamp.UTC().Format("20060102_150405"), w.seq)
	path := filepath.Join(w.dir, name)
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
