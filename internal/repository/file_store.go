package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// File names of the three state records inside the data directory.
const (
	RoomsFile        = "rooms.json"
	ReservationsFile = "reservations.json"
	NextIDFile       = "next_id.json"
)

// FileStore keeps the state as three JSON files in one directory.  Each
// file is replaced atomically (temp file + rename), so a crash can never
// leave a half-written record behind, but the three files are not
// replaced as one unit; see Save.
type FileStore struct {
	dir string
}

// NewFileStore returns a FileStore rooted at dir.  The directory is
// created on the first Save.
func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = "."
	}
	return &FileStore{dir: dir}
}

// Dir returns the data directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) paths() [3]string {
	return [3]string{
		filepath.Join(s.dir, RoomsFile),
		filepath.Join(s.dir, ReservationsFile),
		filepath.Join(s.dir, NextIDFile),
	}
}

// Load reads all three files.  It returns ErrNotFound when none of them
// exist and ErrCorruptState when only some exist or the content is bad.
func (s *FileStore) Load(ctx context.Context) (Snapshot, error) {
	var data [3][]byte
	missing := 0
	for i, p := range s.paths() {
		b, err := os.ReadFile(p)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			missing++
		case err != nil:
			return Snapshot{}, fmt.Errorf("read %s: %w", p, err)
		default:
			data[i] = b
		}
	}
	if missing == len(data) {
		return Snapshot{}, ErrNotFound
	}
	if missing > 0 {
		return Snapshot{}, fmt.Errorf("%w: %d of %d state files missing in %s", ErrCorruptState, missing, len(data), s.dir)
	}
	return decodeSnapshot(records{rooms: data[0], reservations: data[1], nextID: data[2]})
}

// Save encodes every record before touching the disk, then replaces the
// three files one after another.  An encoding error never leaves mixed
// content.  A crash between two renames does: the next Load then sees
// records from two saves and, unless they happen to agree, reports
// ErrCorruptState.  Use the mysql or redis driver when that window
// matters.
func (s *FileStore) Save(ctx context.Context, snap Snapshot) error {
	rec, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	paths := s.paths()
	for i, body := range [][]byte{rec.rooms, rec.reservations, rec.nextID} {
		if err := renameio.WriteFile(paths[i], body, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", paths[i], err)
		}
	}
	return nil
}
