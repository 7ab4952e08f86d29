package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"agrimarket/internal/domain/entity"
	"agrimarket/internal/domain/repository"
	"agrimarket/pkg/errors"
)

type firestoreCropRepository struct {
	client *firestore.Client
}

func NewFirestoreCropRepository(client *firestore.Client) repository.CropRepository {
	return &firestoreCropRepository{
		client: client,
	}
}

func setCropID(c *entity.Crop, id string) { c.ID = id }

func (r *firestoreCropRepository) Create(ctx context.Context, crop *entity.Crop) error {
	if crop.ID == "" {
		crop.ID = uuid.New().String()
	}

	now := time.Now()
	crop.CreatedAt = now
	crop.UpdatedAt = now
	if crop.Quantity > 0 {
		crop.Status = entity.CropStatusActive
	} else {
		crop.Status = entity.CropStatusSoldOut
	}

	_, err := r.client.Collection(cropsCollection).Doc(crop.ID).Set(ctx, crop)
	if err != nil {
		return errors.Internal("Failed to create crop", err)
	}
	return nil
}

func (r *firestoreCropRepository) GetByID(ctx context.Context, id string) (*entity.Crop, error) {
	doc, err := r.client.Collection(cropsCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, readErr("Crop", err)
	}

	var crop entity.Crop
	if err := doc.DataTo(&crop); err != nil {
		return nil, errors.Internal("Failed to parse crop data", err)
	}
	crop.ID = doc.Ref.ID

	return &crop, nil
}

// UpdateDetails never touches quantity or status.
func (r *firestoreCropRepository) UpdateDetails(ctx context.Context, crop *entity.Crop) error {
	crop.UpdatedAt = time.Now()

	_, err := r.client.Collection(cropsCollection).Doc(crop.ID).Update(ctx, []firestore.Update{
		{Path: "cropType", Value: crop.CropType},
		{Path: "region", Value: crop.Region},
		{Path: "season", Value: crop.Season},
		{Path: "quality", Value: crop.Quality},
		{Path: "basePrice", Value: crop.BasePrice},
		{Path: "updatedAt", Value: crop.UpdatedAt},
	})
	if err != nil {
		return readErr("Crop", err)
	}
	return nil
}

func (r *firestoreCropRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection(cropsCollection).Doc(id).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete crop", err)
	}
	return nil
}

func (r *firestoreCropRepository) List(ctx context.Context) ([]*entity.Crop, error) {
	iter := r.client.Collection(cropsCollection).OrderBy("createdAt", firestore.Desc).Documents(ctx)

	crops, err := getAll(iter, setCropID)
	if err != nil {
		return nil, errors.Internal("Failed to list crops", err)
	}
	return crops, nil
}

func (r *firestoreCropRepository) ListByFarmer(ctx context.Context, farmerID string) ([]*entity.Crop, error) {
	iter := r.client.Collection(cropsCollection).
		Where("farmerId", "==", farmerID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)

	crops, err := getAll(iter, setCropID)
	if err != nil {
		return nil, errors.Internal("Failed to list farmer crops", err)
	}
	return crops, nil
}

func (r *firestoreCropRepository) ListRecent(ctx context.Context, limit int) ([]*entity.Crop, error) {
	iter := r.client.Collection(cropsCollection).
		OrderBy("createdAt", firestore.Desc).
		Limit(limit).
		Documents(ctx)

	crops, err := getAll(iter, setCropID)
	if err != nil {
		return nil, errors.Internal("Failed to list recent crops", err)
	}
	return crops, nil
}

func (r *firestoreCropRepository) Take(ctx context.Context, id string, qty int) error {
	ref := r.client.Collection(cropsCollection).Doc(id)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		crop, err := txGet[entity.Crop](tx, ref, "Crop")
		if err != nil {
			return err
		}

		if err := crop.Take(qty); err != nil {
			return repository.DomainError(err)
		}

		return tx.Update(ref, []firestore.Update{
			{Path: "quantity", Value: crop.Quantity},
			{Path: "status", Value: crop.Status},
			{Path: "updatedAt", Value: time.Now()},
		})
	})
	return txErr("Failed to reserve crop stock", err)
}

func (r *firestoreCropRepository) Restore(ctx context.Context, id string, qty int) error {
	_, err := r.client.Collection(cropsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "quantity", Value: firestore.Increment(qty)},
		{Path: "status", Value: entity.CropStatusActive},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return readErr("Crop", err)
	}
	return nil
}

func (r *firestoreCropRepository) SetQuantity(ctx context.Context, id string, expected, quantity int) (*entity.Crop, error) {
	ref := r.client.Collection(cropsCollection).Doc(id)

	var updated *entity.Crop
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		crop, err := txGet[entity.Crop](tx, ref, "Crop")
		if err != nil {
			return err
		}
		if crop.Quantity != expected {
			return errors.StockChanged("Quantity changed since you loaded it, please refresh")
		}

		crop.ID = id
		crop.Quantity = 0
		crop.Restore(quantity)
		crop.UpdatedAt = time.Now()
		updated = crop

		return tx.Update(ref, []firestore.Update{
			{Path: "quantity", Value: crop.Quantity},
			{Path: "status", Value: crop.Status},
			{Path: "updatedAt", Value: crop.UpdatedAt},
		})
	})
	if err != nil {
		return nil, txErr("Failed to update crop quantity", err)
	}

	return updated, nil
}
