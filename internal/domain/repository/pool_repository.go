package repository

import (
	"context"

	"agrimarket/internal/domain/entity"
)

type PoolRepository interface {
	Create(ctx context.Context, pool *entity.Pool) error
	GetByID(ctx context.Context, id string) (*entity.Pool, error)
	List(ctx context.Context) ([]*entity.Pool, error)
	ListByCreator(ctx context.Context, farmerID string) ([]*entity.Pool, error)

	// Join applies entity.Pool.Join and upserts the member record in one
	// transaction.
	Join(ctx context.Context, poolID, farmerID string, qty int) (*entity.Pool, error)
	// Sell reserves qty of pooled stock for an order.
	Sell(ctx context.Context, poolID string, qty int) error
	// Unsell releases a reservation made by Sell.
	Unsell(ctx context.Context, poolID string, qty int) error
}
