package service

import "github.com/iliyamo/hotel-reservation/internal/model"

// DefaultRooms returns the seed layout used when no saved state exists.
func DefaultRooms() []model.Room {
	return []model.Room{
		model.NewRoom(101, "Single", 7999),
		model.NewRoom(102, "Double", 9999),
		model.NewRoom(103, "Double", 9999),
		model.NewRoom(201, "Deluxe Double", 12999),
		model.NewRoom(202, "Suite", 19999),
		model.NewRoom(301, "Single", 8500),
	}
}
