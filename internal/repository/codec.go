package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// records is the serialized form of a Snapshot: one JSON document per
// record, shared by the file and Redis backends.
type records struct {
	rooms        []byte
	reservations []byte
	nextID       []byte
}

// encodeSnapshot rejects text that is not valid UTF-8; encoding/json would
// replace the bad bytes with U+FFFD and the record would not load back
// unchanged.
func encodeSnapshot(snap Snapshot) (records, error) {
	if err := checkText(snap); err != nil {
		return records{}, err
	}
	rooms := snap.Rooms
	if rooms == nil {
		rooms = []model.Room{}
	}
	reservations := snap.Reservations
	if reservations == nil {
		reservations = map[int]model.Reservation{}
	}

	var (
		rec records
		err error
	)
	if rec.rooms, err = json.MarshalIndent(rooms, "", "  "); err != nil {
		return records{}, fmt.Errorf("marshal rooms: %w", err)
	}
	if rec.reservations, err = json.MarshalIndent(reservations, "", "  "); err != nil {
		return records{}, fmt.Errorf("marshal reservations: %w", err)
	}
	if rec.nextID, err = json.Marshal(snap.NextID); err != nil {
		return records{}, fmt.Errorf("marshal next id: %w", err)
	}
	return rec, nil
}

func checkText(snap Snapshot) error {
	for _, r := range snap.Rooms {
		if !utf8.ValidString(r.Type) {
			return fmt.Errorf("room %d: type %q is not valid UTF-8", r.RoomNumber, r.Type)
		}
	}
	for _, res := range snap.SortedReservations() {
		for _, s := range []string{res.GuestName, res.CheckIn, res.CheckOut} {
			if !utf8.ValidString(s) {
				return fmt.Errorf("reservation %d: %q is not valid UTF-8", res.ID, s)
			}
		}
	}
	return nil
}

// decodeSnapshot rebuilds and validates a Snapshot.  Every failure is
// reported as ErrCorruptState.
func decodeSnapshot(rec records) (Snapshot, error) {
	var snap Snapshot
	if err := strictUnmarshal(rec.rooms, &snap.Rooms); err != nil {
		return Snapshot{}, fmt.Errorf("%w: rooms: %v", ErrCorruptState, err)
	}
	if err := strictUnmarshal(rec.reservations, &snap.Reservations); err != nil {
		return Snapshot{}, fmt.Errorf("%w: reservations: %v", ErrCorruptState, err)
	}
	if err := strictUnmarshal(rec.nextID, &snap.NextID); err != nil {
		return Snapshot{}, fmt.Errorf("%w: next id: %v", ErrCorruptState, err)
	}
	if snap.Reservations == nil {
		snap.Reservations = map[int]model.Reservation{}
	}
	if err := snap.Validate(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func strictUnmarshal(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return errors.New("empty record")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data after record")
	}
	return nil
}
