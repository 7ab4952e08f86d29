package repository

import (
	"context"

	"agrimarket/internal/domain/entity"
)

// CropRepository stores crop lots. Quantity is never written from a value
// read earlier: it only changes through Take, Restore and SetQuantity, each
// of which re-reads and writes the document atomically.
type CropRepository interface {
	Create(ctx context.Context, crop *entity.Crop) error
	GetByID(ctx context.Context, id string) (*entity.Crop, error)
	UpdateDetails(ctx context.Context, crop *entity.Crop) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*entity.Crop, error)
	ListByFarmer(ctx context.Context, farmerID string) ([]*entity.Crop, error)
	ListRecent(ctx context.Context, limit int) ([]*entity.Crop, error)

	// Take decrements quantity if at least qty remains.
	Take(ctx context.Context, id string, qty int) error
	// Restore adds qty back after a failed order write.
	Restore(ctx context.Context, id string, qty int) error
	// SetQuantity replaces quantity only if it still equals expected.
	SetQuantity(ctx context.Context, id string, expected, quantity int) (*entity.Crop, error)
}
