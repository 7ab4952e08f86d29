package repository

import (
	"context"
	"errors"

	"agrimarket/internal/domain/entity"
)

// ErrOrderExists is wrapped by OrderRepository.Create when the ID is taken.
var ErrOrderExists = errors.New("order already exists")

type OrderRepository interface {
	// Create writes the order only if no document with its ID exists.
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	ListByFarmer(ctx context.Context, farmerID string) ([]*entity.Order, error)
	ListByConsumer(ctx context.Context, consumerID string) ([]*entity.Order, error)

	// Advance moves the order one step forward if farmerID owns it.
	Advance(ctx context.Context, id, farmerID string, next entity.OrderStatus) (*entity.Order, error)

	// WatchFarmer calls fn with the farmer's full order list every time it
	// changes, until ctx is done.
	WatchFarmer(ctx context.Context, farmerID string, fn func([]*entity.Order)) error
}
