package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Store loads and saves a complete Snapshot.  Implementations must treat
// the three records as a single unit: Load either returns all of them or
// an error, and Save overwrites all of them.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

// Snapshot is the persisted state of the hotel.
//
// Fields:
//  Rooms        – ordered room list; order is insertion order.
//  Reservations – active reservations keyed by reservation ID.
//  NextID       – identifier the next booking will receive.
type Snapshot struct {
	Rooms        []model.Room
	Reservations map[int]model.Reservation
	NextID       int
}

// Clone returns a deep copy so a store never shares slices or maps with
// the caller's live state.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Rooms:        make([]model.Room, len(s.Rooms)),
		Reservations: make(map[int]model.Reservation, len(s.Reservations)),
		NextID:       s.NextID,
	}
	copy(out.Rooms, s.Rooms)
	for id, res := range s.Reservations {
		out.Reservations[id] = res
	}
	return out
}

// SortedReservations returns the reservations ordered by ID.
func (s Snapshot) SortedReservations() []model.Reservation {
	out := make([]model.Reservation, 0, len(s.Reservations))
	for _, res := range s.Reservations {
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Validate checks the invariants that tie rooms, reservations and the
// counter together.  Any violation is reported as ErrCorruptState.
func (s Snapshot) Validate() error {
	rooms := make(map[int]model.Room, len(s.Rooms))
	for _, r := range s.Rooms {
		if r.RoomNumber <= 0 {
			return fmt.Errorf("%w: invalid room number %d", ErrCorruptState, r.RoomNumber)
		}
		if r.PriceCents < 0 {
			return fmt.Errorf("%w: room %d has negative price", ErrCorruptState, r.RoomNumber)
		}
		if _, dup := rooms[r.RoomNumber]; dup {
			return fmt.Errorf("%w: duplicate room number %d", ErrCorruptState, r.RoomNumber)
		}
		rooms[r.RoomNumber] = r
	}

	if s.NextID < model.FirstReservationID {
		return fmt.Errorf("%w: next reservation id %d below %d", ErrCorruptState, s.NextID, model.FirstReservationID)
	}

	booked := make(map[int]int, len(s.Reservations))
	for key, res := range s.Reservations {
		if key != res.ID {
			return fmt.Errorf("%w: reservation stored under %d has id %d", ErrCorruptState, key, res.ID)
		}
		if res.ID >= s.NextID {
			return fmt.Errorf("%w: reservation %d not below next id %d", ErrCorruptState, res.ID, s.NextID)
		}
		room, ok := rooms[res.RoomNumber]
		if !ok {
			return fmt.Errorf("%w: reservation %d references unknown room %d", ErrCorruptState, res.ID, res.RoomNumber)
		}
		if other, taken := booked[res.RoomNumber]; taken {
			return fmt.Errorf("%w: room %d held by reservations %d and %d", ErrCorruptState, room.RoomNumber, other, res.ID)
		}
		booked[res.RoomNumber] = res.ID
	}

	for _, r := range s.Rooms {
		_, held := booked[r.RoomNumber]
		if r.Available == held {
			return fmt.Errorf("%w: room %d is %s but has reservation=%t", ErrCorruptState, r.RoomNumber, r.Status(), held)
		}
	}
	return nil
}
