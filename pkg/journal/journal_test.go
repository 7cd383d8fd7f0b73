package journal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWriteRun(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)
	w.nowFn = func() time.Time {
		return time.Date(2026, 8, 26, 14, 30, 5, 0, time.UTC)
	}

	rec := &RunRecord{
		ValuationDate: "2026-08-26",
		ScenarioCount: 3,
		Targets:       2,
		Measures:      []string{"PresentValue"},
		Cells: []CellRecord{
			{Target: 0, Measure: "PresentValue", Ok: true, Currency: "USD", Values: []float64{1, 2, 3}},
			{Target: 1, Measure: "PresentValue", Ok: false, Reason: "MISSING_MARKET_DATA", Message: "no quote"},
		},
		FailedCells: 1,
	}

	path, err := w.WriteRun(rec)
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "run_20260826_143005_00001.json"), path)
	assert.Equal(t, 1, rec.RunNumber)

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	var got RunRecord
	assert.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "2026-08-26", got.ValuationDate)
	assert.Equal(t, 1, got.FailedCells)
	assert.Len(t, got.Cells, 2)
	assert.Equal(t, []float64{1, 2, 3}, got.Cells[0].Values)
	assert.Equal(t, "MISSING_MARKET_DATA", got.Cells[1].Reason)
}

func TestWriteRunSequenceIncrements(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)
	w.nowFn = func() time.Time {
		return time.Date(2026, 8, 26, 14, 30, 5, 0, time.UTC)
	}

	first := &RunRecord{ValuationDate: "2026-08-26"}
	second := &RunRecord{ValuationDate: "2026-08-26"}

	p1, err := w.WriteRun(first)
	assert.NoError(t, err)
	p2, err := w.WriteRun(second)
	assert.NoError(t, err)

	assert.NotEqual(t, p1, p2)
	assert.Equal(t, 1, first.RunNumber)
	assert.Equal(t, 2, second.RunNumber)
}

func TestWriteRunConcurrent(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)
	w.nowFn = func() time.Time {
		return time.Date(2026, 8, 26, 14, 30, 5, 0, time.UTC)
	}

	const writers = 16
	paths := make([]string, writers)
	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			paths[i], errs[i] = w.WriteRun(&RunRecord{ValuationDate: "2026-08-26"})
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, writers)
	for i := 0; i < writers; i++ {
		assert.NoError(t, errs[i])
		assert.False(t, seen[paths[i]], "path %s written twice", paths[i])
		seen[paths[i]] = true
	}

	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.Len(t, entries, writers)
}

func TestWriteRunKeepsExplicitTimestamp(t *testing.T) {
	w := NewWriter(t.TempDir())
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	rec := &RunRecord{Timestamp: ts, ValuationDate: "2025-01-02"}
	path, err := w.WriteRun(rec)
	assert.NoError(t, err)
	assert.Equal(t, ts, rec.Timestamp)
	assert.Contains(t, filepath.Base(path), "run_20250102_030405")
}

func TestWriteRunNilRecord(t *testing.T) {
	w := NewWriter(t.TempDir())
	_, err := w.WriteRun(nil)
	assert.Error(t, err)
}

func TestNewWriterCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "journal")
	w := NewWriter(dir)
	_, err := w.WriteRun(&RunRecord{ValuationDate: "2026-08-26"})
	assert.NoError(t, err)

	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
}
