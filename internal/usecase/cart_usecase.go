package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"agrimarket/internal/domain/entity"
	"agrimarket/internal/domain/repository"
	"agrimarket/pkg/errors"
)

type CartUseCase struct {
	cartRepo       repository.CartRepository
	catalog        *CatalogUseCase
	deliveryCharge int64
	now            func() time.Time
}

func NewCartUseCase(cartRepo repository.CartRepository, catalog *CatalogUseCase, deliveryCharge int64) *CartUseCase {
	return &CartUseCase{
		cartRepo:       cartRepo,
		catalog:        catalog,
		deliveryCharge: deliveryCharge,
		now:            time.Now,
	}
}

type AddLineInput struct {
	SourceType entity.SourceType
	SourceID   string
	Quantity   int
}

// AddLine validates against the source as it is now and writes the line,
// replacing any earlier line for the same source. Nothing is written when a
// check fails.
func (uc *CartUseCase) AddLine(ctx context.Context, s Session, input AddLineInput) (*entity.CartLine, error) {
	if err := s.RequireConsumer(); err != nil {
		return nil, err
	}
	if !input.SourceType.Valid() {
		return nil, errors.Validation("source_type", "source_type must be crop or pool")
	}
	if strings.TrimSpace(input.SourceID) == "" {
		return nil, errors.Validation("source_id", "source_id is required")
	}
	if input.Quantity < 1 {
		return nil, errors.Validation("quantity", "quantity must be at least 1")
	}

	src, err := uc.catalog.Resolve(ctx, input.SourceType, input.SourceID)
	if err != nil {
		return nil, err
	}

	if src.Closed {
		return nil, errors.Conflict("This pool is closed")
	}
	if input.Quantity > src.Available {
		return nil, errors.Validation("quantity", fmt.Sprintf("quantity must be at most %d", src.Available))
	}
	if src.FarmerID == "" {
		return nil, errors.Validation("farmer_id", "This listing has no farmer attached and cannot be paid for")
	}
	if src.Contact.PaymentID == "" {
		return nil, errors.Validation("farmer_payment_id", "The farmer has not set up a payment ID yet")
	}
	if !entity.ValidPaymentID(src.Contact.PaymentID) {
		return nil, errors.Validation("farmer_payment_id", "The farmer's payment ID is invalid")
	}

	now := uc.now()
	line := &entity.CartLine{
		ID:              src.ID,
		SourceType:      src.Type,
		SourceID:        src.ID,
		CropName:        src.CropName,
		Price:           src.Price,
		Quantity:        input.Quantity,
		TotalPrice:      entity.LineTotal(src.Price, input.Quantity),
		FarmerID:        src.FarmerID,
		FarmerName:      src.Contact.Name,
		FarmerPhone:     src.Contact.Phone,
		FarmerPaymentID: src.Contact.PaymentID,
		Token:           uuid.New().String(),
		SnapshotAt:      now,
		CreatedAt:       now,
	}

	if err := uc.cartRepo.Upsert(ctx, s.UserID, line); err != nil {
		return nil, err
	}
	return line, nil
}

func (uc *CartUseCase) RemoveLine(ctx context.Context, s Session, lineID string) error {
	if !s.Authenticated() {
		return errors.Unauthorized("Please log in to continue", nil)
	}
	return uc.cartRepo.Delete(ctx, s.UserID, lineID)
}

type CartLineView struct {
	*entity.CartLine
	ContactMayBeOutdated bool    `json:"contact_may_be_outdated"`
	DeliveryCharge       int64   `json:"delivery_charge"`
	FinalPay             float64 `json:"final_pay"`
}

type CartView struct {
	Lines          []CartLineView `json:"lines"`
	Subtotal       float64        `json:"subtotal"`
	DeliveryCharge int64          `json:"delivery_charge"`
	Total          float64        `json:"total"`
}

// ListLines returns the caller's cart. Anonymous callers get an empty cart.
func (uc *CartUseCase) ListLines(ctx context.Context, s Session) (*CartView, error) {
	view := &CartView{Lines: []CartLineView{}}
	if !s.Authenticated() {
		return view, nil
	}

	lines, err := uc.cartRepo.List(ctx, s.UserID)
	if err != nil {
		return nil, err
	}

	profileTimes := make(map[string]time.Time)
	subtotals := make([]float64, 0, len(lines))
	for _, l := range lines {
		updated, ok := profileTimes[l.FarmerID]
		if !ok {
			updated = uc.catalog.Contact(ctx, l.FarmerID).ProfileUpdatedAt
			profileTimes[l.FarmerID] = updated
		}

		view.Lines = append(view.Lines, CartLineView{
			CartLine:             l,
			ContactMayBeOutdated: updated.After(l.SnapshotAt),
			DeliveryCharge:       uc.deliveryCharge,
			FinalPay:             entity.AddCharge(l.TotalPrice, uc.deliveryCharge),
		})
		subtotals = append(subtotals, l.TotalPrice)
	}

	view.Subtotal = entity.Sum(subtotals...)
	view.DeliveryCharge = uc.deliveryCharge * int64(len(lines))
	view.Total = entity.AddCharge(view.Subtotal, view.DeliveryCharge)
	return view, nil
}
