package repository

import "context"

// MemoryStore keeps the snapshot in process memory.  It is used for
// ephemeral runs and as a test double for the service layer.
type MemoryStore struct {
	snap  *Snapshot
	saves int
	// FailSave, when non-nil, is returned by every Save call.
	FailSave error
}

// NewMemoryStore returns an empty store; Load reports ErrNotFound until
// the first Save.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// Load returns a copy of the last saved snapshot.
func (m *MemoryStore) Load(ctx context.Context) (Snapshot, error) {
	if m.snap == nil {
		return Snapshot{}, ErrNotFound
	}
	return m.snap.Clone(), nil
}

// Save replaces the stored snapshot.
func (m *MemoryStore) Save(ctx context.Context, snap Snapshot) error {
	if m.FailSave != nil {
		return m.FailSave
	}
	c := snap.Clone()
	m.snap = &c
	m.saves++
	return nil
}

// Saves reports how many Save calls succeeded.
func (m *MemoryStore) Saves() int { return m.saves }
