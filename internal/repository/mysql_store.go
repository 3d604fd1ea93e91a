package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// MySQLStore keeps the state in three tables: hotel_rooms,
// hotel_reservations and hotel_state (a single row holding the next
// reservation ID).  Load runs inside one read-only transaction and Save
// inside one read-write transaction, which gives the all-or-nothing
// behaviour the file backend can only approximate.  The schema is
// created by database.EnsureSchema.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore returns a MySQLStore bound to the given database.
func NewMySQLStore(db *sql.DB) *MySQLStore { return &MySQLStore{db: db} }

// Load reads rooms (in their saved order), reservations and the counter.
// A missing state row with no rooms means a fresh database and yields
// ErrNotFound.
func (s *MySQLStore) Load(ctx context.Context) (Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return Snapshot{}, fmt.Errorf("begin load: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	snap := Snapshot{Reservations: map[int]model.Reservation{}}
	err = tx.QueryRowContext(ctx, `SELECT next_reservation_id FROM hotel_state WHERE id = 1`).Scan(&snap.NextID)
	if errors.Is(err, sql.ErrNoRows) {
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM hotel_rooms`).Scan(&n); err != nil {
			return Snapshot{}, fmt.Errorf("count rooms: %w", err)
		}
		if n == 0 {
			return Snapshot{}, ErrNotFound
		}
		return Snapshot{}, fmt.Errorf("%w: %d rooms stored without a state row", ErrCorruptState, n)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("query state: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT room_number, room_type, price_cents, available FROM hotel_rooms ORDER BY position`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("query rooms: %w", err)
	}
	for rows.Next() {
		var r model.Room
		if err := rows.Scan(&r.RoomNumber, &r.Type, &r.PriceCents, &r.Available); err != nil {
			rows.Close()
			return Snapshot{}, fmt.Errorf("%w: scan room: %v", ErrCorruptState, err)
		}
		snap.Rooms = append(snap.Rooms, r)
	}
	if err := rows.Close(); err != nil {
		return Snapshot{}, fmt.Errorf("close rooms: %w", err)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("iterate rooms: %w", err)
	}

	rows, err = tx.QueryContext(ctx,
		`SELECT reservation_id, room_number, guest_name, check_in, check_out, total_cost_cents
		 FROM hotel_reservations ORDER BY reservation_id`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("query reservations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var res model.Reservation
		if err := rows.Scan(&res.ID, &res.RoomNumber, &res.GuestName, &res.CheckIn, &res.CheckOut, &res.TotalCostCents); err != nil {
			return Snapshot{}, fmt.Errorf("%w: scan reservation: %v", ErrCorruptState, err)
		}
		snap.Reservations[res.ID] = res
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("iterate reservations: %w", err)
	}

	if err := snap.Validate(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Save replaces the content of all three tables in one transaction.  The
// transaction is rolled back on any error so the previous state remains.
func (s *MySQLStore) Save(ctx context.Context, snap Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM hotel_reservations`); err != nil {
		return fmt.Errorf("clear reservations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM hotel_rooms`); err != nil {
		return fmt.Errorf("clear rooms: %w", err)
	}
	if err := insertRoomsTx(ctx, tx, snap.Rooms); err != nil {
		return fmt.Errorf("insert rooms: %w", err)
	}
	if err := insertReservationsTx(ctx, tx, snap.SortedReservations()); err != nil {
		return fmt.Errorf("insert reservations: %w", err)
	}
	const upsert = `INSERT INTO hotel_state (id, next_reservation_id) VALUES (1, ?)
		ON DUPLICATE KEY UPDATE next_reservation_id = VALUES(next_reservation_id)`
	if _, err := tx.ExecContext(ctx, upsert, snap.NextID); err != nil {
		return fmt.Errorf("store next id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	committed = true
	return nil
}

// insertRoomsTx inserts all rooms in a single statement.  The position
// column preserves list order.  Passing an empty slice is a no-op.
func insertRoomsTx(ctx context.Context, tx *sql.Tx, rooms []model.Room) error {
	if len(rooms) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO hotel_rooms (room_number, position, room_type, price_cents, available) VALUES `)
	args := make([]interface{}, 0, len(rooms)*5)
	for i, r := range rooms {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?, ?, ?, ?, ?)")
		args = append(args, r.RoomNumber, i, r.Type, r.PriceCents, r.Available)
	}
	_, err := tx.ExecContext(ctx, sb.String(), args...)
	return err
}

func insertReservationsTx(ctx context.Context, tx *sql.Tx, reservations []model.Reservation) error {
	if len(reservations) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO hotel_reservations (reservation_id, room_number, guest_name, check_in, check_out, total_cost_cents) VALUES `)
	args := make([]interface{}, 0, len(reservations)*6)
	for i, res := range reservations {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?)")
		args = append(args, res.ID, res.RoomNumber, res.GuestName, res.CheckIn, res.CheckOut, res.TotalCostCents)
	}
	_, err := tx.ExecContext(ctx, sb.String(), args...)
	return err
}
