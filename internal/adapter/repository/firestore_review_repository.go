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

type firestoreReviewRepository struct {
	client *firestore.Client
}

func NewFirestoreReviewRepository(client *firestore.Client) repository.ReviewRepository {
	return &firestoreReviewRepository{
		client: client,
	}
}

func (r *firestoreReviewRepository) Submit(ctx context.Context, review *entity.Review) (*entity.User, error) {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	review.CreatedAt = time.Now()

	farmerRef := r.client.Collection(usersCollection).Doc(review.FarmerID)
	reviewRef := farmerRef.Collection(reviewsCollection).Doc(review.ID)

	var farmer *entity.User
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		u, err := txGet[entity.User](tx, farmerRef, "Farmer")
		if err != nil {
			return err
		}
		if !u.IsFarmer() {
			return errors.Validation("farmer_id", "Reviews can only be left for farmers")
		}

		u.ID = review.FarmerID
		u.ApplyRating(review.Rating)
		farmer = u

		if err := tx.Create(reviewRef, review); err != nil {
			return err
		}
		return tx.Update(farmerRef, []firestore.Update{
			{Path: "rating", Value: u.Rating},
			{Path: "ratingCount", Value: u.RatingCount},
		})
	})
	if err != nil {
		return nil, txErr("Failed to submit review", err)
	}

	return farmer, nil
}

func (r *firestoreReviewRepository) ListByFarmer(ctx context.Context, farmerID string) ([]*entity.Review, error) {
	iter := r.client.Collection(usersCollection).Doc(farmerID).
		Collection(reviewsCollection).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)

	reviews, err := getAll(iter, func(rv *entity.Review, id string) { rv.ID = id })
	if err != nil {
		return nil, errors.Internal("Failed to list reviews", err)
	}
	return reviews, nil
}
