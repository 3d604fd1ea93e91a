package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreLoadMissing(t *testing.T) {
	store := NewFileStore(t.TempDir())
	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "state")
	store := NewFileStore(dir)

	want := sampleSnapshot()
	require.NoError(t, store.Save(ctx, want))

	for _, name := range []string{RoomsFile, ReservationsFile, NextIDFile} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFileStoreSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())
	require.NoError(t, store.Save(ctx, sampleSnapshot()))

	next := sampleSnapshot()
	next.Rooms[0].Available = true
	delete(next.Reservations, 1001)
	next.NextID = 1002
	require.NoError(t, store.Save(ctx, next))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.Reservations)
	assert.Equal(t, 1002, got.NextID)
}

func TestFileStoreCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(dir string)
	}{
		{name: "partial", corrupt: func(dir string) {
			_ = os.Remove(filepath.Join(dir, NextIDFile))
		}},
		{name: "truncated", corrupt: func(dir string) {
			_ = os.WriteFile(filepath.Join(dir, ReservationsFile), []byte(`{"1001": {"reserv`), 0o644)
		}},
		{name: "empty file", corrupt: func(dir string) {
			_ = os.WriteFile(filepath.Join(dir, RoomsFile), nil, 0o644)
		}},
		{name: "wrong shape", corrupt: func(dir string) {
			_ = os.WriteFile(filepath.Join(dir, RoomsFile), []byte(`{"room_number": 101}`), 0o644)
		}},
		{name: "unknown field", corrupt: func(dir string) {
			_ = os.WriteFile(filepath.Join(dir, NextIDFile), []byte(`{"next": 1002}`), 0o644)
		}},
		{name: "dangling room reference", corrupt: func(dir string) {
			_ = os.WriteFile(filepath.Join(dir, ReservationsFile),
				[]byte(`{"1001": {"reservation_id": 1001, "room_number": 999}}`), 0o644)
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			dir := t.TempDir()
			store := NewFileStore(dir)
			require.NoError(t, store.Save(ctx, sampleSnapshot()))

			tc.corrupt(dir)

			got, err := store.Load(ctx)
			assert.ErrorIs(t, err, ErrCorruptState)
			assert.Empty(t, got.Rooms)
			assert.Nil(t, got.Reservations)
		})
	}
}

func TestFileStoreKeepsNonASCIIText(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())

	want := sampleSnapshot()
	res := want.Reservations[1001]
	res.GuestName = "José Müller 山田"
	res.CheckIn = "1er janvier"
	want.Reservations[1001] = res
	want.Rooms[1].Type = "Düplex"
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFileStoreRejectsInvalidUTF8(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())

	snap := sampleSnapshot()
	res := snap.Reservations[1001]
	res.GuestName = "Jos\xe9"
	snap.Reservations[1001] = res

	err := store.Save(ctx, snap)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid UTF-8")

	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreInterruptedSaveIsCorrupt(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewFileStore(dir)
	require.NoError(t, store.Save(ctx, sampleSnapshot()))

	// Only the first file of a later save reached the disk: room 101 is
	// free again but its reservation is still on record.
	next := sampleSnapshot()
	next.Rooms[0].Available = true
	delete(next.Reservations, 1001)
	rec, err := encodeSnapshot(next)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, RoomsFile), rec.rooms, 0o644))

	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, ErrCorruptState)
}
