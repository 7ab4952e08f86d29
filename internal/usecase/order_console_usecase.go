package usecase

import (
	"context"

	"agrimarket/internal/domain/entity"
	"agrimarket/internal/domain/repository"
	"agrimarket/pkg/errors"
	"agrimarket/pkg/logger"
)

// OrderConsoleUseCase is the farmer's view of incoming orders.
type OrderConsoleUseCase struct {
	orderRepo repository.OrderRepository
	notifier  Notifier
}

func NewOrderConsoleUseCase(orderRepo repository.OrderRepository, notifier Notifier) *OrderConsoleUseCase {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &OrderConsoleUseCase{
		orderRepo: orderRepo,
		notifier:  notifier,
	}
}

// ListOrders returns the farmer's orders, newest first.
func (uc *OrderConsoleUseCase) ListOrders(ctx context.Context, s Session) ([]*entity.Order, error) {
	if err := s.RequireFarmer(); err != nil {
		return nil, err
	}
	return uc.orderRepo.ListByFarmer(ctx, s.UserID)
}

// AdvanceStatus moves an order one step along
// processing -> in_delivery -> delivered.
func (uc *OrderConsoleUseCase) AdvanceStatus(ctx context.Context, s Session, orderID string, next entity.OrderStatus) (*entity.Order, error) {
	if err := s.RequireFarmer(); err != nil {
		return nil, err
	}
	if !next.Valid() {
		return nil, errors.Validation("status", "status must be one of: in_delivery delivered")
	}

	order, err := uc.orderRepo.Advance(ctx, orderID, s.UserID, next)
	if err != nil {
		return nil, err
	}

	logger.Info("order %s moved to %s by %s", order.ID, order.Status, s.UserID)
	uc.notifier.Publish(order.FarmerID, "order.status", order)
	uc.notifier.Publish(order.ConsumerID, "order.status", order)

	return order, nil
}

// Watch calls fn with the farmer's order list now and after every change,
// until ctx ends.
func (uc *OrderConsoleUseCase) Watch(ctx context.Context, s Session, fn func([]*entity.Order)) error {
	if err := s.RequireFarmer(); err != nil {
		return err
	}
	return uc.orderRepo.WatchFarmer(ctx, s.UserID, fn)
}
