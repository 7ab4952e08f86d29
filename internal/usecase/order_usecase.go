package usecase

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"agrimarket/internal/domain/entity"
	"agrimarket/internal/domain/repository"
	"agrimarket/pkg/config"
	"agrimarket/pkg/errors"
	"agrimarket/pkg/logger"
)

const (
	unknownName    = "Unknown"
	unknownPhone   = "N/A"
	unknownAddress = "Not provided"
)

var orderNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("agrimarket/orders"))

// OrderID is stable for one write of one cart line, so a resubmission maps
// onto the order it already produced.
func OrderID(consumerID string, line *entity.CartLine) string {
	return uuid.NewSHA1(orderNamespace, []byte(consumerID+"/"+line.ID+"/"+line.Token)).String()
}

type OrderUseCase struct {
	cartRepo       repository.CartRepository
	cropRepo       repository.CropRepository
	poolRepo       repository.PoolRepository
	orderRepo      repository.OrderRepository
	userRepo       repository.UserRepository
	notifier       Notifier
	locker         Locker
	inflight       singleflight.Group
	deliveryCharge int64
	sweepPolicy    string
	now            func() time.Time
}

type OrderOptions struct {
	DeliveryCharge int64
	SweepPolicy    string
	Notifier       Notifier
	Locker         Locker
}

func NewOrderUseCase(
	cartRepo repository.CartRepository,
	cropRepo repository.CropRepository,
	poolRepo repository.PoolRepository,
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	opts OrderOptions,
) *OrderUseCase {
	uc := &OrderUseCase{
		cartRepo:       cartRepo,
		cropRepo:       cropRepo,
		poolRepo:       poolRepo,
		orderRepo:      orderRepo,
		userRepo:       userRepo,
		notifier:       opts.Notifier,
		locker:         opts.Locker,
		deliveryCharge: opts.DeliveryCharge,
		sweepPolicy:    opts.SweepPolicy,
		now:            time.Now,
	}
	if uc.notifier == nil {
		uc.notifier = noopNotifier{}
	}
	if uc.locker == nil {
		uc.locker = noopLocker{}
	}
	if uc.sweepPolicy == "" {
		uc.sweepPolicy = config.SweepContinue
	}
	return uc
}

type PlacedOrder struct {
	Order   *entity.Order   `json:"order"`
	Handoff *PaymentHandoff `json:"handoff,omitempty"`
	// Duplicate is set when the line had already been turned into this order.
	Duplicate bool `json:"duplicate,omitempty"`
}

type LineFailure struct {
	LineID    string `json:"line_id"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
	Retryable bool   `json:"retryable"`
	Status    int    `json:"-"`
}

type PlaceResult struct {
	Placed  []PlacedOrder `json:"placed"`
	Failed  []LineFailure `json:"failed"`
	Skipped []string      `json:"skipped"`
}

// PlaceCart places the selected lines (all lines when lineIDs is empty),
// each on its own. One line failing never undoes another; with the halt
// policy the remaining lines are skipped instead of attempted.
func (uc *OrderUseCase) PlaceCart(ctx context.Context, s Session, method entity.PaymentMethod, lineIDs []string) (*PlaceResult, error) {
	if err := s.RequireConsumer(); err != nil {
		return nil, err
	}
	if !method.Valid() {
		return nil, errors.Validation("payment_method", "payment_method must be one of: UPI PHONE COD")
	}

	lines, err := uc.cartRepo.List(ctx, s.UserID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, errors.Validation("cart", "Your cart is empty")
	}

	ids := lineIDs
	if len(ids) == 0 {
		ids = make([]string, 0, len(lines))
		for _, l := range lines {
			ids = append(ids, l.ID)
		}
	}

	result := &PlaceResult{Placed: []PlacedOrder{}, Failed: []LineFailure{}, Skipped: []string{}}
	for i, id := range ids {
		if ctx.Err() != nil {
			result.Skipped = append(result.Skipped, ids[i:]...)
			break
		}

		placed, err := uc.PlaceLine(ctx, s, id, method)
		if err == nil {
			result.Placed = append(result.Placed, *placed)
			continue
		}

		result.Failed = append(result.Failed, lineFailure(id, err))
		if uc.sweepPolicy == config.SweepHalt {
			result.Skipped = append(result.Skipped, ids[i+1:]...)
			break
		}
	}

	return result, nil
}

func lineFailure(lineID string, err error) LineFailure {
	appErr := errors.As(err)
	return LineFailure{
		LineID:    lineID,
		Code:      appErr.Code,
		Message:   appErr.Message,
		Field:     appErr.Field,
		Retryable: errors.IsRetryable(appErr),
		Status:    appErr.Status,
	}
}

// PlaceLine turns one cart line into one order. Concurrent calls for the
// same line share a single attempt.
func (uc *OrderUseCase) PlaceLine(ctx context.Context, s Session, lineID string, method entity.PaymentMethod) (*PlacedOrder, error) {
	if err := s.RequireConsumer(); err != nil {
		return nil, err
	}
	if !method.Valid() {
		return nil, errors.Validation("payment_method", "payment_method must be one of: UPI PHONE COD")
	}

	v, err, _ := uc.inflight.Do(s.UserID+"/"+lineID, func() (interface{}, error) {
		return uc.placeLine(ctx, s, lineID, method)
	})
	if err != nil {
		return nil, err
	}
	return v.(*PlacedOrder), nil
}

func (uc *OrderUseCase) placeLine(ctx context.Context, s Session, lineID string, method entity.PaymentMethod) (*PlacedOrder, error) {
	line, err := uc.cartRepo.Get(ctx, s.UserID, lineID)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, errors.NotFound("Cart line", err)
		}
		return nil, err
	}

	if line.FarmerID == "" {
		return nil, errors.Validation("farmer_id", "Cannot attribute payment: this item has no farmer")
	}
	if method == entity.PaymentUPI && line.FarmerPaymentID == "" {
		return nil, errors.Validation("farmer_payment_id", "The farmer has no payment ID, choose another payment method")
	}
	if line.Quantity < 1 {
		return nil, errors.Validation("quantity", "quantity must be at least 1")
	}

	order, err := uc.buildOrder(ctx, s, line, method)
	if err != nil {
		return nil, err
	}

	// A line whose order was written but whose cleanup failed must not touch
	// stock again, even if the source has since sold out.
	existing, err := uc.orderRepo.GetByID(ctx, order.ID)
	switch {
	case err == nil:
		return uc.settled(ctx, s, line, existing, true), nil
	case !errors.Is(err, errors.CodeNotFound):
		return nil, err
	}

	unlock := uc.locker.Lock(string(line.SourceType) + "/" + line.SourceID)
	defer unlock()

	if err := uc.take(ctx, line); err != nil {
		return nil, err
	}

	if err := uc.orderRepo.Create(ctx, order); err != nil {
		uc.restore(line)

		if !stderrors.Is(err, repository.ErrOrderExists) {
			return nil, err
		}
		existing, getErr := uc.orderRepo.GetByID(ctx, order.ID)
		if getErr != nil {
			return nil, getErr
		}
		return uc.settled(ctx, s, line, existing, true), nil
	}

	placed := uc.settled(ctx, s, line, order, false)
	uc.notifier.Publish(order.FarmerID, "order.created", order)
	logger.Info("order %s placed by %s for %d x %s", order.ID, s.UserID, order.Quantity, order.CropName)
	return placed, nil
}

// settled removes the cart line behind a stored order. The order stands even
// when the delete fails.
func (uc *OrderUseCase) settled(ctx context.Context, s Session, line *entity.CartLine, order *entity.Order, duplicate bool) *PlacedOrder {
	if err := uc.cartRepo.Delete(ctx, s.UserID, line.ID); err != nil {
		logger.Warn("order %s placed but cart line %s was not removed: %v", order.ID, line.ID, err)
	}
	return &PlacedOrder{
		Order:     order,
		Handoff:   BuildHandoff(order),
		Duplicate: duplicate,
	}
}

func (uc *OrderUseCase) buildOrder(ctx context.Context, s Session, line *entity.CartLine, method entity.PaymentMethod) (*entity.Order, error) {
	name, phone, address := unknownName, unknownPhone, unknownAddress

	consumer, err := uc.userRepo.GetByID(ctx, s.UserID)
	switch {
	case err == nil:
		name = orDefault(consumer.FullName, unknownName)
		phone = orDefault(consumer.Phone, unknownPhone)
		address = orDefault(consumer.DeliveryAddress(), unknownAddress)
	case !errors.Is(err, errors.CodeNotFound):
		return nil, err
	}

	now := uc.now()
	return &entity.Order{
		ID:              OrderID(s.UserID, line),
		CropName:        line.CropName,
		Quantity:        line.Quantity,
		TotalPrice:      line.TotalPrice,
		DeliveryCharge:  uc.deliveryCharge,
		FinalPay:        entity.AddCharge(line.TotalPrice, uc.deliveryCharge),
		OrderType:       line.SourceType.OrderType(),
		SourceType:      line.SourceType,
		SourceID:        line.SourceID,
		CartLineID:      line.ID,
		FarmerID:        line.FarmerID,
		FarmerName:      line.FarmerName,
		FarmerPhone:     line.FarmerPhone,
		FarmerPaymentID: line.FarmerPaymentID,
		ConsumerID:      s.UserID,
		ConsumerName:    name,
		ConsumerPhone:   phone,
		DeliveryAddress: address,
		PaymentMethod:   method,
		Status:          entity.OrderProcessing,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (uc *OrderUseCase) take(ctx context.Context, line *entity.CartLine) error {
	switch line.SourceType {
	case entity.SourceCrop:
		return uc.cropRepo.Take(ctx, line.SourceID, line.Quantity)
	case entity.SourcePool:
		return uc.poolRepo.Sell(ctx, line.SourceID, line.Quantity)
	}
	return errors.Validation("source_type", "source_type must be crop or pool")
}

// restore gives stock back after the order write failed. It runs on a fresh
// context so a cancelled request cannot strand the decrement.
func (uc *OrderUseCase) restore(line *entity.CartLine) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	switch line.SourceType {
	case entity.SourceCrop:
		err = uc.cropRepo.Restore(ctx, line.SourceID, line.Quantity)
	case entity.SourcePool:
		err = uc.poolRepo.Unsell(ctx, line.SourceID, line.Quantity)
	}
	if err != nil {
		logger.Error("failed to restore %d of %s %s: %v", line.Quantity, line.SourceType, line.SourceID, err)
	}
}

func (uc *OrderUseCase) ListConsumerOrders(ctx context.Context, s Session) ([]*entity.Order, error) {
	if err := s.RequireConsumer(); err != nil {
		return nil, err
	}
	return uc.orderRepo.ListByConsumer(ctx, s.UserID)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
