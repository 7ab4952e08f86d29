package usecase

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"agrimarket/internal/domain/entity"
	"agrimarket/internal/domain/repository"
	"agrimarket/pkg/errors"
	"agrimarket/pkg/logger"
)

const contactLookupLimit = 8

type CatalogUseCase struct {
	cropRepo repository.CropRepository
	poolRepo repository.PoolRepository
	userRepo repository.UserRepository
}

func NewCatalogUseCase(cropRepo repository.CropRepository, poolRepo repository.PoolRepository, userRepo repository.UserRepository) *CatalogUseCase {
	return &CatalogUseCase{
		cropRepo: cropRepo,
		poolRepo: poolRepo,
		userRepo: userRepo,
	}
}

type CropListing struct {
	*entity.Crop
	entity.Contact
}

type PoolListing struct {
	*entity.Pool
	entity.Contact
	Available      int `json:"available"`
	FillPercentage int `json:"fill_percentage"`
}

type Catalog struct {
	Crops []CropListing `json:"crops"`
	Pools []PoolListing `json:"pools"`
}

// Filter narrows a catalog. Zero fields match everything.
type Filter struct {
	Query    string
	Region   string
	Season   entity.Season
	MinPrice *float64
	MaxPrice *float64
}

func (f Filter) Validate() error {
	if f.Season != "" && !f.Season.Valid() {
		return errors.Validation("season", "season must be one of: kharif rabi summer")
	}
	if f.MinPrice != nil && *f.MinPrice < 0 {
		return errors.Validation("min_price", "min_price must not be negative")
	}
	if f.MaxPrice != nil && *f.MaxPrice < 0 {
		return errors.Validation("max_price", "max_price must not be negative")
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return errors.Validation("min_price", "min_price must not exceed max_price")
	}
	return nil
}

func (f Filter) match(name, region string, season entity.Season, price float64) bool {
	if q := strings.TrimSpace(f.Query); q != "" && !strings.Contains(strings.ToLower(name), strings.ToLower(q)) {
		return false
	}
	if f.Region != "" && region != f.Region {
		return false
	}
	if f.Season != "" && season != f.Season {
		return false
	}
	if f.MinPrice != nil && price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && price > *f.MaxPrice {
		return false
	}
	return true
}

// Apply returns the listings that pass every predicate.
func (f Filter) Apply(c *Catalog) *Catalog {
	out := &Catalog{Crops: []CropListing{}, Pools: []PoolListing{}}
	for _, l := range c.Crops {
		if f.match(l.CropType, l.Region, l.Season, l.BasePrice) {
			out.Crops = append(out.Crops, l)
		}
	}
	for _, l := range c.Pools {
		if f.match(l.CropType, l.Region, l.Season, l.Price) {
			out.Pools = append(out.Pools, l)
		}
	}
	return out
}

// Browse loads crops and pools with farmer contact details attached.
func (uc *CatalogUseCase) Browse(ctx context.Context, filter Filter) (*Catalog, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	var (
		crops []*entity.Crop
		pools []*entity.Pool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		crops, err = uc.cropRepo.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		pools, err = uc.poolRepo.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(crops)+len(pools))
	for _, c := range crops {
		ids = append(ids, c.FarmerID)
	}
	for _, p := range pools {
		ids = append(ids, p.CreatedBy)
	}
	contacts, err := uc.contacts(ctx, ids)
	if err != nil {
		return nil, err
	}

	catalog := &Catalog{
		Crops: make([]CropListing, 0, len(crops)),
		Pools: make([]PoolListing, 0, len(pools)),
	}
	for _, c := range crops {
		catalog.Crops = append(catalog.Crops, CropListing{Crop: c, Contact: contacts[c.FarmerID]})
	}
	for _, p := range pools {
		catalog.Pools = append(catalog.Pools, poolListing(p, contacts[p.CreatedBy]))
	}

	return filter.Apply(catalog), nil
}

func poolListing(p *entity.Pool, contact entity.Contact) PoolListing {
	return PoolListing{
		Pool:           p,
		Contact:        contact,
		Available:      p.Available(),
		FillPercentage: p.FillPercentage(),
	}
}

// contacts resolves each distinct farmer once. A missing or unreadable
// profile yields an empty contact.
func (uc *CatalogUseCase) contacts(ctx context.Context, farmerIDs []string) (map[string]entity.Contact, error) {
	out := make(map[string]entity.Contact)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(contactLookupLimit)

	seen := make(map[string]bool)
	for _, id := range farmerIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		id := id
		g.Go(func() error {
			contact := uc.Contact(gctx, id)
			mu.Lock()
			out[id] = contact
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// Contact returns the farmer's public contact or an empty one.
func (uc *CatalogUseCase) Contact(ctx context.Context, farmerID string) entity.Contact {
	if farmerID == "" {
		return entity.Contact{}
	}
	user, err := uc.userRepo.GetByID(ctx, farmerID)
	if err != nil {
		if !errors.Is(err, errors.CodeNotFound) {
			logger.Warn("farmer %s contact lookup failed: %v", farmerID, err)
		}
		return entity.Contact{}
	}
	return user.Contact()
}

// Source is a purchasable crop lot or pool as seen at one instant.
type Source struct {
	Type      entity.SourceType
	ID        string
	CropName  string
	Price     float64
	Available int
	FarmerID  string
	Contact   entity.Contact
	Closed    bool
}

// Resolve reads one crop lot or pool with its farmer contact.
func (uc *CatalogUseCase) Resolve(ctx context.Context, sourceType entity.SourceType, id string) (*Source, error) {
	switch sourceType {
	case entity.SourceCrop:
		crop, err := uc.cropRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return &Source{
			Type:      entity.SourceCrop,
			ID:        crop.ID,
			CropName:  crop.CropType,
			Price:     crop.BasePrice,
			Available: crop.Quantity,
			FarmerID:  crop.FarmerID,
			Contact:   uc.Contact(ctx, crop.FarmerID),
		}, nil

	case entity.SourcePool:
		pool, err := uc.poolRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return &Source{
			Type:      entity.SourcePool,
			ID:        pool.ID,
			CropName:  pool.CropType,
			Price:     pool.Price,
			Available: pool.Available(),
			FarmerID:  pool.CreatedBy,
			Contact:   uc.Contact(ctx, pool.CreatedBy),
			Closed:    pool.IsClosed(),
		}, nil
	}

	return nil, errors.Validation("source_type", "source_type must be crop or pool")
}

// RecentCrops lists the newest lots for the consumer dashboard.
func (uc *CatalogUseCase) RecentCrops(ctx context.Context, limit int) ([]CropListing, error) {
	crops, err := uc.cropRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(crops))
	for _, c := range crops {
		ids = append(ids, c.FarmerID)
	}
	contacts, err := uc.contacts(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]CropListing, 0, len(crops))
	for _, c := range crops {
		out = append(out, CropListing{Crop: c, Contact: contacts[c.FarmerID]})
	}
	return out, nil
}
