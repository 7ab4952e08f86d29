package usecase

import (
	"context"
	"strings"

	"agrimarket/internal/domain/entity"
	"agrimarket/internal/domain/repository"
	"agrimarket/pkg/errors"
)

type CropUseCase struct {
	cropRepo repository.CropRepository
	locker   Locker
}

func NewCropUseCase(cropRepo repository.CropRepository, locker Locker) *CropUseCase {
	if locker == nil {
		locker = noopLocker{}
	}
	return &CropUseCase{
		cropRepo: cropRepo,
		locker:   locker,
	}
}

type CropInput struct {
	CropType  string
	Region    string
	Season    entity.Season
	Quality   entity.Quality
	Quantity  int
	BasePrice float64
}

func (in CropInput) validate() error {
	if strings.TrimSpace(in.CropType) == "" {
		return errors.Validation("crop_type", "crop_type is required")
	}
	if strings.TrimSpace(in.Region) == "" {
		return errors.Validation("region", "region is required")
	}
	if !in.Season.Valid() {
		return errors.Validation("season", "season must be one of: kharif rabi summer")
	}
	if !in.Quality.Valid() {
		return errors.Validation("quality", "quality must be one of: premium standard economy")
	}
	if in.Quantity < 0 {
		return errors.Validation("quantity", "quantity must not be negative")
	}
	if in.BasePrice <= 0 {
		return errors.Validation("base_price", "base_price must be greater than 0")
	}
	return nil
}

func (uc *CropUseCase) CreateCrop(ctx context.Context, s Session, input CropInput) (*entity.Crop, error) {
	if err := s.RequireFarmer(); err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	crop := &entity.Crop{
		FarmerID:  s.UserID,
		CropType:  strings.TrimSpace(input.CropType),
		Region:    strings.TrimSpace(input.Region),
		Season:    input.Season,
		Quality:   input.Quality,
		Quantity:  input.Quantity,
		BasePrice: input.BasePrice,
	}
	if err := uc.cropRepo.Create(ctx, crop); err != nil {
		return nil, err
	}
	return crop, nil
}

func (uc *CropUseCase) ListMyCrops(ctx context.Context, s Session) ([]*entity.Crop, error) {
	if err := s.RequireFarmer(); err != nil {
		return nil, err
	}
	return uc.cropRepo.ListByFarmer(ctx, s.UserID)
}

// UpdateCropInput edits a lot. A quantity change must name the quantity the
// farmer last saw; it is rejected if an order got there first.
type UpdateCropInput struct {
	CropType         *string
	Region           *string
	Season           *entity.Season
	Quality          *entity.Quality
	BasePrice        *float64
	Quantity         *int
	ExpectedQuantity *int
}

func (uc *CropUseCase) UpdateCrop(ctx context.Context, s Session, id string, input UpdateCropInput) (*entity.Crop, error) {
	crop, err := uc.owned(ctx, s, id)
	if err != nil {
		return nil, err
	}

	if input.Quantity != nil && input.ExpectedQuantity == nil {
		return nil, errors.Validation("expected_quantity", "expected_quantity is required when changing quantity")
	}

	details := CropInput{
		CropType:  crop.CropType,
		Region:    crop.Region,
		Season:    crop.Season,
		Quality:   crop.Quality,
		Quantity:  crop.Quantity,
		BasePrice: crop.BasePrice,
	}
	if input.CropType != nil {
		details.CropType = *input.CropType
	}
	if input.Region != nil {
		details.Region = *input.Region
	}
	if input.Season != nil {
		details.Season = *input.Season
	}
	if input.Quality != nil {
		details.Quality = *input.Quality
	}
	if input.BasePrice != nil {
		details.BasePrice = *input.BasePrice
	}
	if input.Quantity != nil {
		details.Quantity = *input.Quantity
	}
	if err := details.validate(); err != nil {
		return nil, err
	}

	detailsChanged := input.CropType != nil || input.Region != nil || input.Season != nil ||
		input.Quality != nil || input.BasePrice != nil
	if detailsChanged {
		crop.CropType = strings.TrimSpace(details.CropType)
		crop.Region = strings.TrimSpace(details.Region)
		crop.Season = details.Season
		crop.Quality = details.Quality
		crop.BasePrice = details.BasePrice
		if err := uc.cropRepo.UpdateDetails(ctx, crop); err != nil {
			return nil, err
		}
	}

	if input.Quantity != nil {
		unlock := uc.locker.Lock(string(entity.SourceCrop) + "/" + id)
		updated, err := uc.cropRepo.SetQuantity(ctx, id, *input.ExpectedQuantity, *input.Quantity)
		unlock()
		if err != nil {
			return nil, err
		}
		crop.Quantity = updated.Quantity
		crop.Status = updated.Status
		crop.UpdatedAt = updated.UpdatedAt
	}

	return crop, nil
}

func (uc *CropUseCase) DeleteCrop(ctx context.Context, s Session, id string) error {
	if _, err := uc.owned(ctx, s, id); err != nil {
		return err
	}
	return uc.cropRepo.Delete(ctx, id)
}

func (uc *CropUseCase) owned(ctx context.Context, s Session, id string) (*entity.Crop, error) {
	if err := s.RequireFarmer(); err != nil {
		return nil, err
	}
	crop, err := uc.cropRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if crop.FarmerID != s.UserID {
		return nil, errors.Forbidden("You can only change your own crops", nil)
	}
	return crop, nil
}
