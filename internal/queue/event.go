// Package queue defines booking event payloads exchanged over the message
// broker and the consumer that records them.
package queue

// Queue names.  Both queues are durable.
const (
	BookingConfirmedQueue = "booking.confirmed"
	BookingCancelledQueue = "booking.cancelled"
)

// BookingConfirmedEvent is published once a booking has been paid for and
// persisted.  It carries enough detail for downstream consumers to log or
// notify without reading the hotel state.
type BookingConfirmedEvent struct {
	ReservationID  int    `json:"reservation_id"`
	RoomNumber     int    `json:"room_number"`
	RoomType       string `json:"room_type"`
	GuestName      string `json:"guest_name"`
	CheckIn        string `json:"check_in"`
	CheckOut       string `json:"check_out"`
	TotalCostCents int64  `json:"total_cost_cents"`
	ConfirmedAt    string `json:"confirmed_at"`
}

// BookingCancelledEvent is published once a cancellation has been
// persisted and the room is free again.
type BookingCancelledEvent struct {
	ReservationID int    `json:"reservation_id"`
	RoomNumber    int    `json:"room_number"`
	GuestName     string `json:"guest_name"`
	CancelledAt   string `json:"cancelled_at"`
}
