package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// sampleSnapshot returns a consistent state: room 101 booked by 1001,
// room 102 free, counter at 1002.
func sampleSnapshot() Snapshot {
	booked := model.NewRoom(101, "Single", 7999)
	booked.Available = false
	return Snapshot{
		Rooms: []model.Room{booked, model.NewRoom(102, "Double", 9999)},
		Reservations: map[int]model.Reservation{
			1001: {
				ID:             1001,
				RoomNumber:     101,
				GuestName:      "Alice",
				CheckIn:        "2025-01-01",
				CheckOut:       "2025-01-04",
				TotalCostCents: 23997,
			},
		},
		NextID: 1002,
	}
}

func TestSnapshotValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Snapshot)
		valid  bool
	}{
		{name: "consistent", mutate: func(s *Snapshot) {}, valid: true},
		{name: "empty inventory", mutate: func(s *Snapshot) {
			*s = Snapshot{NextID: model.FirstReservationID}
		}, valid: true},
		{name: "duplicate room", mutate: func(s *Snapshot) {
			s.Rooms = append(s.Rooms, model.NewRoom(102, "Suite", 100))
		}},
		{name: "non-positive room number", mutate: func(s *Snapshot) {
			s.Rooms = append(s.Rooms, model.NewRoom(0, "Suite", 100))
		}},
		{name: "unknown room", mutate: func(s *Snapshot) {
			res := s.Reservations[1001]
			res.RoomNumber = 999
			s.Reservations[1001] = res
		}},
		{name: "key mismatch", mutate: func(s *Snapshot) {
			s.Reservations[1000] = s.Reservations[1001]
			delete(s.Reservations, 1001)
		}},
		{name: "counter not ahead of ids", mutate: func(s *Snapshot) { s.NextID = 1001 }},
		{name: "counter below first id", mutate: func(s *Snapshot) {
			*s = Snapshot{NextID: 5}
		}},
		{name: "booked room marked available", mutate: func(s *Snapshot) { s.Rooms[0].Available = true }},
		{name: "free room marked occupied", mutate: func(s *Snapshot) { s.Rooms[1].Available = false }},
		{name: "room booked twice", mutate: func(s *Snapshot) {
			s.Rooms[1].Available = false
			s.Reservations[1000] = model.Reservation{ID: 1000, RoomNumber: 101}
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			snap := sampleSnapshot()
			tc.mutate(&snap)
			err := snap.Validate()
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrCorruptState)
			}
		})
	}
}

func TestSnapshotCloneIsDeep(t *testing.T) {
	snap := sampleSnapshot()
	c := snap.Clone()
	c.Rooms[1].Available = false
	delete(c.Reservations, 1001)

	assert.True(t, snap.Rooms[1].Available)
	require.Contains(t, snap.Reservations, 1001)
}

func TestSortedReservations(t *testing.T) {
	snap := Snapshot{Reservations: map[int]model.Reservation{
		1005: {ID: 1005}, 1001: {ID: 1001}, 1003: {ID: 1003},
	}}
	got := snap.SortedReservations()
	require.Len(t, got, 3)
	assert.Equal(t, []int{1001, 1003, 1005}, []int{got[0].ID, got[1].ID, got[2].ID})
}
