package service

import "errors"

// Booking and cancellation failures.  None of them except ErrSaveFailure
// leave any trace in the state; ErrSaveFailure means the in-memory change
// was applied but could not be written to the store.
var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomOccupied        = errors.New("room is currently occupied")
	ErrPaymentDeclined     = errors.New("payment declined")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrInvalidText         = errors.New("text is not valid UTF-8")
	ErrSaveFailure         = errors.New("failed to save state")
)
