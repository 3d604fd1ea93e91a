package model

import "fmt"

// Room status words used by the display contract.
const (
	StatusAvailable = "AVAILABLE"
	StatusOccupied  = "OCCUPIED"
)

// Room describes a bookable unit of the hotel.  Rooms are uniquely
// identified by their number; the number never changes for the lifetime
// of the process.  The category is a free-form label such as "Single"
// or "Suite".
//
// Fields:
//  RoomNumber – unique positive identifier.
//  Type       – category label, not constrained to an enumeration.
//  PriceCents – nightly rate in cents (non-negative).
//  Available  – true when the room can be booked; false while an
//               active reservation references it.
type Room struct {
	RoomNumber int    `json:"room_number"`
	Type       string `json:"type"`
	PriceCents int64  `json:"price_cents"`
	Available  bool   `json:"available"`
}

// NewRoom returns an available room.
func NewRoom(number int, roomType string, priceCents int64) Room {
	return Room{RoomNumber: number, Type: roomType, PriceCents: priceCents, Available: true}
}

// Status returns AVAILABLE or OCCUPIED.
func (r Room) Status() string {
	if r.Available {
		return StatusAvailable
	}
	return StatusOccupied
}

// String renders the room on a single line for the console.
func (r Room) String() string {
	return fmt.Sprintf("Room %d | Category: %s | Price: %s/night | Status: %s",
		r.RoomNumber, r.Type, FormatCents(r.PriceCents), r.Status())
}
