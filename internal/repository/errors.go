// Package repository persists the hotel state.  Every backend stores the
// same three records (rooms, reservations and the next reservation ID)
// and reads or writes them as one unit.  The sentinel values below let
// the service layer tell an expected first run apart from damaged data.
package repository

import "errors"

// ErrNotFound is returned by Load when none of the state records exist.
// This is the normal situation on a first run and callers should seed a
// default inventory instead of reporting a failure.
var ErrNotFound = errors.New("state not found")

// ErrCorruptState is returned by Load when stored data exists but cannot
// be decoded, is only partially present, or breaks the invariants linking
// rooms to reservations.  There is no recovery path; the process should
// stop rather than run on top of inconsistent data.
var ErrCorruptState = errors.New("corrupt state")
