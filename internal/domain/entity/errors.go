package entity

import "errors"

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrPoolClosed        = errors.New("pool is closed")
	ErrPoolCapacity      = errors.New("join exceeds remaining pool capacity")
	ErrInvalidTransition = errors.New("invalid status transition")
)
