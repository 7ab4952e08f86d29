package usecase

import (
	"context"
	"strings"

	"agrimarket/internal/domain/entity"
	"agrimarket/internal/domain/repository"
	"agrimarket/pkg/errors"
)

type ReviewUseCase struct {
	reviewRepo repository.ReviewRepository
}

func NewReviewUseCase(reviewRepo repository.ReviewRepository) *ReviewUseCase {
	return &ReviewUseCase{
		reviewRepo: reviewRepo,
	}
}

type SubmitReviewResult struct {
	Review      *entity.Review `json:"review"`
	Rating      float64        `json:"rating"`
	RatingCount int            `json:"rating_count"`
}

// SubmitReview records a consumer's rating of a farmer. The running average
// is recomputed in the same transaction as the insert.
func (uc *ReviewUseCase) SubmitReview(ctx context.Context, s Session, farmerID string, rating int, text string) (*SubmitReviewResult, error) {
	if err := s.RequireConsumer(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(farmerID) == "" {
		return nil, errors.Validation("farmer_id", "farmer_id is required")
	}
	if rating < 1 || rating > 5 {
		return nil, errors.Validation("rating", "rating must be between 1 and 5")
	}

	review := &entity.Review{
		FarmerID:   farmerID,
		ConsumerID: s.UserID,
		Rating:     rating,
		Review:     strings.TrimSpace(text),
	}

	farmer, err := uc.reviewRepo.Submit(ctx, review)
	if err != nil {
		return nil, err
	}

	return &SubmitReviewResult{
		Review:      review,
		Rating:      farmer.Rating,
		RatingCount: farmer.RatingCount,
	}, nil
}

func (uc *ReviewUseCase) ListReviews(ctx context.Context, farmerID string) ([]*entity.Review, error) {
	return uc.reviewRepo.ListByFarmer(ctx, farmerID)
}
