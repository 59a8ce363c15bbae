// Package save implements JSON serialization and deserialization of game state.
package save

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/nathoo/spiritfield/engine/balance"
	"github.com/nathoo/spiritfield/engine/field"
	"github.com/nathoo/spiritfield/engine/state"
	"github.com/nathoo/spiritfield/types"
)

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Fields      []FieldData    `json:"fields"`
	Inventory   map[string]int `json:"inventory"`
	Proficiency int            `json:"proficiency"`
	FlameType   string         `json:"flame_type"`
}

// FieldData is one persisted field. Elapsed growth is not stored.
type FieldData struct {
	Type       string  `json:"type"`
	GrowthTime float64 `json:"growth_time"`
	Ready      bool    `json:"ready"`
}

// Save serializes game state to JSON bytes.
func Save(s *state.State) ([]byte, error) {
	data := SaveData{
		Fields:      make([]FieldData, 0, len(s.Fields)),
		Inventory:   make(map[string]int, len(balance.Items)),
		Proficiency: s.Proficiency,
		FlameType:   string(s.Flame),
	}
	for i := range s.Fields {
		f := &s.Fields[i]
		data.Fields = append(data.Fields, FieldData{
			Type:       string(f.Crop()),
			GrowthTime: f.GrowthTime(),
			Ready:      f.IsReady(),
		})
	}
	for _, it := range balance.Items {
		data.Inventory[string(it)] = state.Count(s, it)
	}
	return json.MarshalIndent(data, "", "    ")
}

// Load deserializes JSON bytes into a fresh state. It never fails: a
// document that is not a JSON object yields the default state, and each key
// that is missing or malformed falls back to its own default.
func Load(data []byte) *state.State {
	s := state.NewState()

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil || doc == nil {
		return s
	}

	loadFields(s, doc["fields"])

	var inv map[string]json.RawMessage
	if json.Unmarshal(doc["inventory"], &inv) == nil && inv != nil {
		for _, it := range balance.Items {
			if n, ok := count(inv[string(it)]); ok {
				s.Inventory[it] = n
			}
		}
	}

	if n, ok := count(doc["proficiency"]); ok {
		s.Proficiency = n
	}

	var flame string
	if json.Unmarshal(doc["flame_type"], &flame) == nil {
		s.Flame, _ = balance.ParseFlame(flame)
	}

	return s
}

func loadFields(s *state.State, raw json.RawMessage) {
	var entries []json.RawMessage
	if json.Unmarshal(raw, &entries) != nil {
		return
	}
	for i, entry := range entries {
		if i >= len(s.Fields) {
			break
		}
		var fd struct {
			Type       *string  `json:"type"`
			GrowthTime *float64 `json:"growth_time"`
			Ready      *bool    `json:"ready"`
		}
		if json.Unmarshal(entry, &fd) != nil || fd.Type == nil {
			continue
		}
		crop := types.Item(*fd.Type)
		if !balance.IsCrop(crop) {
			continue
		}
		growth := balance.DefaultGrowthTime
		if fd.GrowthTime != nil && *fd.GrowthTime >= 0 {
			growth = *fd.GrowthTime
		}
		s.Fields[i] = field.Restore(crop, growth, fd.Ready != nil && *fd.Ready)
	}
}

// count decodes a non-negative integer. Fractions, negatives, strings and
// nulls are rejected.
func count(raw json.RawMessage) (int, bool) {
	var f *float64
	if raw == nil || json.Unmarshal(raw, &f) != nil || f == nil {
		return 0, false
	}
	if *f < 0 || *f != math.Trunc(*f) || *f > math.MaxInt32 {
		return 0, false
	}
	return int(*f), true
}

// ReadFile loads the save at path. A missing file is a new game, not an
// error. Any other read failure also yields a new game, with the error
// returned so the caller can report it.
func ReadFile(path string) (*state.State, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return state.NewState(), nil
	}
	if err != nil {
		return state.NewState(), fmt.Errorf("reading save %s: %w", path, err)
	}
	return Load(data), nil
}

// WriteFile saves s to path, creating parent directories. The document is
// written to a temporary file in the same directory and renamed into place.
func WriteFile(path string, s *state.State) error {
	data, err := Save(s)
	if err != nil {
		return fmt.Errorf("encoding save: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating save directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".save-*.json")
	if err != nil {
		return fmt.Errorf("creating temp save: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing save: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing save %s: %w", path, err)
	}
	return nil
}
