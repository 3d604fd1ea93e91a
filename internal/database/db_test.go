package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"hotel_rooms", "hotel_reservations", "hotel_state"} {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS " + table).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, EnsureSchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchemaStopsOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS hotel_rooms").WillReturnError(errors.New("denied"))

	assert.Error(t, EnsureSchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchemaStoresFreeFormTextUncapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`(?s)hotel_rooms .*room_type +MEDIUMTEXT NOT NULL`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`(?s)hotel_reservations .*guest_name +MEDIUMTEXT NOT NULL.*check_in +MEDIUMTEXT NOT NULL.*check_out +MEDIUMTEXT NOT NULL`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`hotel_state`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, EnsureSchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())

	for _, stmt := range schema {
		assert.NotContains(t, stmt, "VARCHAR")
	}
}
