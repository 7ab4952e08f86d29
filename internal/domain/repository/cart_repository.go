package repository

import (
	"context"

	"agrimarket/internal/domain/entity"
)

type CartRepository interface {
	Upsert(ctx context.Context, userID string, line *entity.CartLine) error
	Get(ctx context.Context, userID, lineID string) (*entity.CartLine, error)
	List(ctx context.Context, userID string) ([]*entity.CartLine, error)
	Delete(ctx context.Context, userID, lineID string) error
}
