package marketdata

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Snapshot is a persisted set of base observable values, captured once and
// replayable as the observable source of later builds. Encoded with msgpack.
type Snapshot struct {
	Name          string             `msgpack:"name"`
	ValuationDate time.Time          `msgpack:"valuation_date"`
	TakenAt       time.Time          `msgpack:"taken_at"`
	Quotes        map[string]float64 `msgpack:"quotes"`
}

// CaptureSnapshot sources the given IDs and records every value returned.
func CaptureSnapshot(ctx context.Context, src ObservableSource, ids []ID,
	name string, valuationDate time.Time) (*Snapshot, error) {

	values, err := src.Lookup(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("marketdata: capture snapshot %s: %w", name, err)
	}
	snap := &Snapshot{
		Name:          name,
		ValuationDate: valuationDate,
		TakenAt:       time.Now().UTC(),
		Quotes:        make(map[string]float64, len(values)),
	}
	for id, v := range values {
		snap.Quotes[id.Key.Name()] = v
	}
	return snap, nil
}

// Source exposes the snapshot as an ObservableSource.
func (s *Snapshot) Source() *StaticSource {
	return NewStaticSource(s.Quotes)
}

// Encode serialises the snapshot.
func (s *Snapshot) Encode() ([]byte, error) {
	return msgpack.Marshal(s)
}

// DecodeSnapshot deserialises a snapshot.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("marketdata: decode snapshot: %w", err)
	}
	return &s, nil
}

// SaveFile writes the snapshot to disk.
func (s *Snapshot) SaveFile(path string) error {
	data, err := s.Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadSnapshotFile reads a snapshot from disk.
func LoadSnapshotFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("marketdata: read snapshot %s: %w", path, err)
	}
	return DecodeSnapshot(data)
}
