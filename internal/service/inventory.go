// Package service implements the hotel inventory: room lookup,
// availability grouping, and the booking and cancellation transitions.
// Every successful mutation rewrites the full state through a
// repository.Store.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/queue"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// Inventory owns the in-memory state.  Rooms live in an ordered slice
// with an index by room number; reservations refer to rooms only by
// number, so the availability flag has a single home.  Inventory is not
// safe for concurrent use.
type Inventory struct {
	store     repository.Store
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time

	rooms        []model.Room
	index        map[int]int
	reservations map[int]model.Reservation
	nextID       int
}

// Option configures an Inventory.
type Option func(*Inventory)

// WithLogger sets the logger.  The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(inv *Inventory) { inv.logger = l }
}

// WithPublisher announces persisted bookings and cancellations.
func WithPublisher(p Publisher) Option {
	return func(inv *Inventory) { inv.publisher = p }
}

// WithClock overrides the time source used for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(inv *Inventory) { inv.now = now }
}

// BookingRequest carries the guest-supplied booking details.  Names and
// dates are stored as entered.
type BookingRequest struct {
	RoomNumber int
	GuestName  string
	CheckIn    string
	CheckOut   string
}

// PaymentDecision is asked to approve the total, in cents, of a booking
// before anything is changed.
type PaymentDecision func(amountCents int64) bool

// PaymentApproved returns a decision that always answers ok.
func PaymentApproved(ok bool) PaymentDecision {
	return func(int64) bool { return ok }
}

// RoomGroup is one category of available rooms.
type RoomGroup struct {
	Type  string
	Rooms []model.Room
}

// Open loads the saved state from store.  When nothing has been saved
// yet it seeds DefaultRooms with an empty reservation table and the
// counter at model.FirstReservationID.  Any other load error, including
// repository.ErrCorruptState, is returned unchanged in the chain.
func Open(ctx context.Context, store repository.Store, opts ...Option) (*Inventory, error) {
	inv := &Inventory{
		store:  store,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(inv)
	}

	snap, err := store.Load(ctx)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		inv.logger.Info("no saved data found, initializing default rooms")
		snap = repository.Snapshot{
			Rooms:        DefaultRooms(),
			Reservations: map[int]model.Reservation{},
			NextID:       model.FirstReservationID,
		}
	case err != nil:
		return nil, fmt.Errorf("load state: %w", err)
	default:
		inv.logger.Info("state loaded",
			zap.Int("rooms", len(snap.Rooms)),
			zap.Int("reservations", len(snap.Reservations)),
			zap.Int("next_id", snap.NextID))
	}

	inv.adopt(snap)
	return inv, nil
}

func (inv *Inventory) adopt(snap repository.Snapshot) {
	snap = snap.Clone()
	inv.rooms = snap.Rooms
	inv.reservations = snap.Reservations
	inv.nextID = snap.NextID
	inv.index = make(map[int]int, len(inv.rooms))
	for i, r := range inv.rooms {
		inv.index[r.RoomNumber] = i
	}
}

// Snapshot returns a deep copy of the current state.
func (inv *Inventory) Snapshot() repository.Snapshot {
	return repository.Snapshot{
		Rooms:        inv.rooms,
		Reservations: inv.reservations,
		NextID:       inv.nextID,
	}.Clone()
}

// Rooms returns a copy of the room list in insertion order.
func (inv *Inventory) Rooms() []model.Room {
	out := make([]model.Room, len(inv.rooms))
	copy(out, inv.rooms)
	return out
}

// NextID returns the identifier the next booking will receive.
func (inv *Inventory) NextID() int { return inv.nextID }

// FindRoom looks a room up by number.
func (inv *Inventory) FindRoom(number int) (model.Room, bool) {
	i, ok := inv.index[number]
	if !ok {
		return model.Room{}, false
	}
	return inv.rooms[i], true
}

// ListAvailable returns the available rooms grouped by category.  A
// non-empty typeFilter keeps only rooms whose category equals it, ignoring
// case.  Rooms keep their list order inside a group; groups are sorted by
// category name.
func (inv *Inventory) ListAvailable(typeFilter string) []RoomGroup {
	typeFilter = strings.TrimSpace(typeFilter)
	byType := make(map[string][]model.Room)
	for _, r := range inv.rooms {
		if !r.Available {
			continue
		}
		if typeFilter != "" && !strings.EqualFold(r.Type, typeFilter) {
			continue
		}
		byType[r.Type] = append(byType[r.Type], r)
	}

	groups := make([]RoomGroup, 0, len(byType))
	for t, rooms := range byType {
		groups = append(groups, RoomGroup{Type: t, Rooms: rooms})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Type < groups[j].Type })
	return groups
}

// ListAll returns the active reservations ordered by ID.
func (inv *Inventory) ListAll() []model.Reservation {
	return repository.Snapshot{Reservations: inv.reservations}.SortedReservations()
}

// Book reserves a room for a fixed stay of model.NightsPerStay nights.
// The room must exist and be available, the guest details must be valid
// UTF-8 (the stores cannot keep other bytes intact) and pay must approve
// the total; otherwise nothing changes and nothing is saved.  On success the room is
// marked occupied, the reservation takes the next ID and the state is
// saved once.
//
// If the save fails the booking stays in memory: the reservation is
// returned together with an error wrapping ErrSaveFailure.
func (inv *Inventory) Book(ctx context.Context, req BookingRequest, pay PaymentDecision) (model.Reservation, error) {
	i, ok := inv.index[req.RoomNumber]
	if !ok {
		return model.Reservation{}, fmt.Errorf("%w: %d", ErrRoomNotFound, req.RoomNumber)
	}
	room := inv.rooms[i]
	if !room.Available {
		return model.Reservation{}, fmt.Errorf("%w: %d", ErrRoomOccupied, req.RoomNumber)
	}

	for _, field := range []string{req.GuestName, req.CheckIn, req.CheckOut} {
		if !utf8.ValidString(field) {
			return model.Reservation{}, fmt.Errorf("%w: %q", ErrInvalidText, field)
		}
	}

	total := model.StayCost(room)
	if pay == nil || !pay(total) {
		return model.Reservation{}, ErrPaymentDeclined
	}

	inv.rooms[i].Available = false
	res := model.Reservation{
		ID:             inv.nextID,
		RoomNumber:     room.RoomNumber,
		GuestName:      req.GuestName,
		CheckIn:        req.CheckIn,
		CheckOut:       req.CheckOut,
		TotalCostCents: total,
	}
	inv.reservations[res.ID] = res
	inv.nextID++

	inv.logger.Info("room booked",
		zap.Int("reservation_id", res.ID),
		zap.Int("room", res.RoomNumber),
		zap.Int64("total_cents", total))

	if err := inv.persist(ctx); err != nil {
		return res, err
	}
	inv.publishConfirmed(ctx, res, room)
	return res, nil
}

// Cancel removes a reservation and frees its room, then saves the state
// once.  An unknown ID returns ErrReservationNotFound without changes.
// A failed save leaves the cancellation applied and returns the removed
// reservation with an error wrapping ErrSaveFailure.
func (inv *Inventory) Cancel(ctx context.Context, id int) (model.Reservation, error) {
	res, ok := inv.reservations[id]
	if !ok {
		return model.Reservation{}, fmt.Errorf("%w: %d", ErrReservationNotFound, id)
	}

	delete(inv.reservations, id)
	if i, ok := inv.index[res.RoomNumber]; ok {
		inv.rooms[i].Available = true
	}

	inv.logger.Info("reservation cancelled",
		zap.Int("reservation_id", res.ID),
		zap.Int("room", res.RoomNumber))

	if err := inv.persist(ctx); err != nil {
		return res, err
	}
	inv.publishCancelled(ctx, res)
	return res, nil
}

// Save writes the full state.  It is called on shutdown.
func (inv *Inventory) Save(ctx context.Context) error {
	return inv.persist(ctx)
}

func (inv *Inventory) persist(ctx context.Context) error {
	if err := inv.store.Save(ctx, inv.Snapshot()); err != nil {
		inv.logger.Error("error saving data", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrSaveFailure, err)
	}
	inv.logger.Debug("data saved")
	return nil
}

func (inv *Inventory) publishConfirmed(ctx context.Context, res model.Reservation, room model.Room) {
	if inv.publisher == nil {
		return
	}
	ev := queue.BookingConfirmedEvent{
		ReservationID:  res.ID,
		RoomNumber:     res.RoomNumber,
		RoomType:       room.Type,
		GuestName:      res.GuestName,
		CheckIn:        res.CheckIn,
		CheckOut:       res.CheckOut,
		TotalCostCents: res.TotalCostCents,
		ConfirmedAt:    inv.now().UTC().Format(time.RFC3339),
	}
	if err := inv.publisher.BookingConfirmed(ctx, ev); err != nil {
		inv.logger.Warn("publish booking confirmed failed", zap.Int("reservation_id", res.ID), zap.Error(err))
	}
}

func (inv *Inventory) publishCancelled(ctx context.Context, res model.Reservation) {
	if inv.publisher == nil {
		return
	}
	ev := queue.BookingCancelledEvent{
		ReservationID: res.ID,
		RoomNumber:    res.RoomNumber,
		GuestName:     res.GuestName,
		CancelledAt:   inv.now().UTC().Format(time.RFC3339),
	}
	if err := inv.publisher.BookingCancelled(ctx, ev); err != nil {
		inv.logger.Warn("publish booking cancelled failed", zap.Int("reservation_id", res.ID), zap.Error(err))
	}
}
