package repository

import (
	"context"

	"agrimarket/internal/domain/entity"
)

type ReviewRepository interface {
	// Submit appends the review and folds its rating into the farmer's
	// running average in a single transaction.
	Submit(ctx context.Context, review *entity.Review) (*entity.User, error)
	ListByFarmer(ctx context.Context, farmerID string) ([]*entity.Review, error)
}
