// Package snapshot persists full-store snapshots as JSON documents on disk.
package snapshot

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"skilltree-backend/application/ports"
)

const (
	skillsFile   = "skills.json"
	countersFile = "counters.json"
)

// FileStore writes the skill and counter record lists to two JSON files
// under a data directory, replacing them wholesale on every persist.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-backed snapshot store, creating the data
// directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create data directory")
	}
	return &FileStore{dir: dir}, nil
}

// Persist writes the snapshot to disk. Files are written to a temp path and
// renamed so a crash mid-write never leaves a truncated snapshot behind.
func (f *FileStore) Persist(ctx context.Context, snap ports.Snapshot) error {
	skills := snap.Skills
	if skills == nil {
		skills = []ports.SkillRecord{}
	}
	counters := snap.Counters
	if counters == nil {
		counters = []ports.CounterRecord{}
	}

	if err := f.writeJSON(skillsFile, skills); err != nil {
		return err
	}
	return f.writeJSON(countersFile, counters)
}

// Load reads the snapshot from disk. Missing files yield an empty snapshot,
// matching first-boot behavior.
func (f *FileStore) Load(ctx context.Context) (ports.Snapshot, error) {
	var snap ports.Snapshot

	if err := f.readJSON(skillsFile, &snap.Skills); err != nil {
		return ports.Snapshot{}, err
	}
	if err := f.readJSON(countersFile, &snap.Counters); err != nil {
		return ports.Snapshot{}, err
	}
	return snap, nil
}

func (f *FileStore) writeJSON(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s", name)
	}

	target := filepath.Join(f.dir, name)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", name)
	}
	if err := os.Rename(tmp, target); err != nil {
		return errors.Wrapf(err, "failed to replace %s", name)
	}
	return nil
}

func (f *FileStore) readJSON(name string, v interface{}) error {
	data, err := os.ReadFile(filepath.Join(f.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "failed to read %s", name)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "failed to decode %s", name)
	}
	return nil
}
