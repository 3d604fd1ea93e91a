package repository

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*MySQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewMySQLStore(db), mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

func TestMySQLStoreLoadFreshDatabase(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q(`SELECT next_reservation_id FROM hotel_state`)).
		WillReturnRows(sqlmock.NewRows([]string{"next_reservation_id"}))
	mock.ExpectQuery(q(`SELECT COUNT(*) FROM hotel_rooms`)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectRollback()

	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLStoreLoadRoomsWithoutState(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q(`SELECT next_reservation_id FROM hotel_state`)).
		WillReturnRows(sqlmock.NewRows([]string{"next_reservation_id"}))
	mock.ExpectQuery(q(`SELECT COUNT(*) FROM hotel_rooms`)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(6))
	mock.ExpectRollback()

	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, ErrCorruptState)
}

func TestMySQLStoreLoad(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q(`SELECT next_reservation_id FROM hotel_state`)).
		WillReturnRows(sqlmock.NewRows([]string{"next_reservation_id"}).AddRow(1002))
	mock.ExpectQuery(q(`FROM hotel_rooms ORDER BY position`)).
		WillReturnRows(sqlmock.NewRows([]string{"room_number", "room_type", "price_cents", "available"}).
			AddRow(101, "Single", 7999, false).
			AddRow(102, "Double", 9999, true))
	mock.ExpectQuery(q(`FROM hotel_reservations ORDER BY reservation_id`)).
		WillReturnRows(sqlmock.NewRows([]string{"reservation_id", "room_number", "guest_name", "check_in", "check_out", "total_cost_cents"}).
			AddRow(1001, 101, "Alice", "2025-01-01", "2025-01-04", 23997))
	mock.ExpectRollback()

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot(), got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLStoreLoadDanglingReservation(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q(`SELECT next_reservation_id FROM hotel_state`)).
		WillReturnRows(sqlmock.NewRows([]string{"next_reservation_id"}).AddRow(1002))
	mock.ExpectQuery(q(`FROM hotel_rooms ORDER BY position`)).
		WillReturnRows(sqlmock.NewRows([]string{"room_number", "room_type", "price_cents", "available"}).
			AddRow(102, "Double", 9999, true))
	mock.ExpectQuery(q(`FROM hotel_reservations ORDER BY reservation_id`)).
		WillReturnRows(sqlmock.NewRows([]string{"reservation_id", "room_number", "guest_name", "check_in", "check_out", "total_cost_cents"}).
			AddRow(1001, 101, "Alice", "2025-01-01", "2025-01-04", 23997))
	mock.ExpectRollback()

	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, ErrCorruptState)
}

func TestMySQLStoreSave(t *testing.T) {
	store, mock := newMockStore(t)
	snap := sampleSnapshot()

	mock.ExpectBegin()
	mock.ExpectExec(q(`DELETE FROM hotel_reservations`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q(`DELETE FROM hotel_rooms`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q(`INSERT INTO hotel_rooms`)).
		WithArgs(101, 0, "Single", int64(7999), false, 102, 1, "Double", int64(9999), true).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(q(`INSERT INTO hotel_reservations`)).
		WithArgs(1001, 101, "Alice", "2025-01-01", "2025-01-04", int64(23997)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q(`INSERT INTO hotel_state`)).
		WithArgs(1002).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.Save(context.Background(), snap))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLStoreSaveRollsBack(t *testing.T) {
	store, mock := newMockStore(t)
	boom := errors.New("disk full")

	mock.ExpectBegin()
	mock.ExpectExec(q(`DELETE FROM hotel_reservations`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q(`DELETE FROM hotel_rooms`)).WillReturnError(boom)
	mock.ExpectRollback()

	err := store.Save(context.Background(), sampleSnapshot())
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLStoreSaveKeepsLongText(t *testing.T) {
	store, mock := newMockStore(t)
	snap := sampleSnapshot()
	res := snap.Reservations[1001]
	res.GuestName = strings.Repeat("Bartholomew-", 200)
	res.CheckIn = "the first Monday after the spring equinox, late afternoon"
	snap.Reservations[1001] = res

	mock.ExpectBegin()
	mock.ExpectExec(q(`DELETE FROM hotel_reservations`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q(`DELETE FROM hotel_rooms`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q(`INSERT INTO hotel_rooms`)).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(q(`INSERT INTO hotel_reservations`)).
		WithArgs(1001, 101, res.GuestName, res.CheckIn, "2025-01-04", int64(23997)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q(`INSERT INTO hotel_state`)).WithArgs(1002).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.Save(context.Background(), snap))
	assert.NoError(t, mock.ExpectationsWereMet())
}
