package usecase

import (
	"context"
	"strings"

	"agrimarket/internal/domain/entity"
	"agrimarket/internal/domain/repository"
	"agrimarket/pkg/errors"
	"agrimarket/pkg/logger"
)

type PoolUseCase struct {
	poolRepo repository.PoolRepository
	catalog  *CatalogUseCase
	locker   Locker
}

func NewPoolUseCase(poolRepo repository.PoolRepository, catalog *CatalogUseCase, locker Locker) *PoolUseCase {
	if locker == nil {
		locker = noopLocker{}
	}
	return &PoolUseCase{
		poolRepo: poolRepo,
		catalog:  catalog,
		locker:   locker,
	}
}

type CreatePoolInput struct {
	CropType       string
	Region         string
	Season         entity.Season
	Price          float64
	TargetQuantity int
}

// CreatePool opens a pool with the creator as its first member.
func (uc *PoolUseCase) CreatePool(ctx context.Context, s Session, input CreatePoolInput) (*entity.Pool, error) {
	if err := s.RequireFarmer(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.CropType) == "" {
		return nil, errors.Validation("crop_type", "crop_type is required")
	}
	if input.TargetQuantity < 1 {
		return nil, errors.Validation("target_quantity", "target_quantity must be at least 1")
	}
	if input.Price <= 0 {
		return nil, errors.Validation("price", "price must be greater than 0")
	}
	if input.Season != "" && !input.Season.Valid() {
		return nil, errors.Validation("season", "season must be one of: kharif rabi summer")
	}

	pool := &entity.Pool{
		CropType:       strings.TrimSpace(input.CropType),
		Region:         strings.TrimSpace(input.Region),
		Season:         input.Season,
		Price:          input.Price,
		TargetQuantity: input.TargetQuantity,
		MembersCount:   1,
		Status:         entity.PoolStatusActive,
		CreatedBy:      s.UserID,
	}
	if err := uc.poolRepo.Create(ctx, pool); err != nil {
		return nil, err
	}
	return pool, nil
}

func (uc *PoolUseCase) JoinPool(ctx context.Context, s Session, poolID string, quantity int) (*entity.Pool, error) {
	if err := s.RequireFarmer(); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, errors.Validation("quantity", "quantity must be at least 1")
	}

	unlock := uc.locker.Lock(string(entity.SourcePool) + "/" + poolID)
	defer unlock()

	pool, err := uc.poolRepo.Join(ctx, poolID, s.UserID, quantity)
	if err != nil {
		return nil, err
	}

	if pool.IsClosed() {
		logger.Info("pool %s reached its target of %d", pool.ID, pool.TargetQuantity)
	}
	return pool, nil
}

func (uc *PoolUseCase) ListPools(ctx context.Context) ([]PoolListing, error) {
	pools, err := uc.poolRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	farmerIDs := make([]string, 0, len(pools))
	for _, p := range pools {
		farmerIDs = append(farmerIDs, p.CreatedBy)
	}
	contacts, err := uc.catalog.contacts(ctx, farmerIDs)
	if err != nil {
		return nil, err
	}

	out := make([]PoolListing, 0, len(pools))
	for _, p := range pools {
		out = append(out, poolListing(p, contacts[p.CreatedBy]))
	}
	return out, nil
}
