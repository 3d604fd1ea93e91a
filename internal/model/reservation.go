package model

import "fmt"

// FirstReservationID is the first identifier handed out on a fresh
// installation.  Identifiers grow monotonically from here and are never
// reused, even after a cancellation.
const FirstReservationID = 1001

// NightsPerStay is the fixed stay length used to price every booking.
const NightsPerStay = 3

// Reservation records a guest's booking of one room.  The room is
// referenced by its number; the room table is the single source of truth
// for availability.  The total cost is computed once when the booking is
// made and never recalculated, so later price changes do not affect it.
//
// Fields:
//  ID             – unique identifier, assigned from the counter.
//  RoomNumber     – key of the booked room.
//  GuestName      – free-form guest name (unvalidated).
//  CheckIn        – free-form check-in date (unvalidated).
//  CheckOut       – free-form check-out date (unvalidated).
//  TotalCostCents – frozen total in cents.
type Reservation struct {
	ID             int    `json:"reservation_id"`
	RoomNumber     int    `json:"room_number"`
	GuestName      string `json:"guest_name"`
	CheckIn        string `json:"check_in"`
	CheckOut       string `json:"check_out"`
	TotalCostCents int64  `json:"total_cost_cents"`
}

// StayCost returns the total charged for a stay in the given room.
func StayCost(r Room) int64 {
	return r.PriceCents * NightsPerStay
}

// Format renders the reservation on a single line.  The room is passed in
// because the reservation only carries the room number.
func (res Reservation) Format(room Room) string {
	return fmt.Sprintf("| ID: %d | Guest: %s | Room: %d (%s) | Dates: %s to %s | Total Paid: %s",
		res.ID, res.GuestName, res.RoomNumber, room.Type, res.CheckIn, res.CheckOut, FormatCents(res.TotalCostCents))
}
