package repository

import (
	"context"
	"net/http"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"agrimarket/internal/domain/entity"
	"agrimarket/internal/domain/repository"
	"agrimarket/pkg/errors"
	"agrimarket/pkg/logger"
)

type firestoreOrderRepository struct {
	client *firestore.Client
}

func NewFirestoreOrderRepository(client *firestore.Client) repository.OrderRepository {
	return &firestoreOrderRepository{
		client: client,
	}
}

func setOrderID(o *entity.Order, id string) { o.ID = id }

func (r *firestoreOrderRepository) Create(ctx context.Context, order *entity.Order) error {
	_, err := r.client.Collection(ordersCollection).Doc(order.ID).Create(ctx, order)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errors.New(errors.CodeConflict, "Order already placed", http.StatusConflict, repository.ErrOrderExists)
		}
		return errors.Internal("Failed to create order", err)
	}
	return nil
}

func (r *firestoreOrderRepository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	doc, err := r.client.Collection(ordersCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, readErr("Order", err)
	}

	var order entity.Order
	if err := doc.DataTo(&order); err != nil {
		return nil, errors.Internal("Failed to parse order data", err)
	}
	order.ID = doc.Ref.ID

	return &order, nil
}

func (r *firestoreOrderRepository) farmerQuery(farmerID string) firestore.Query {
	return r.client.Collection(ordersCollection).
		Where("farmerId", "==", farmerID).
		OrderBy("createdAt", firestore.Desc)
}

func (r *firestoreOrderRepository) ListByFarmer(ctx context.Context, farmerID string) ([]*entity.Order, error) {
	orders, err := getAll(r.farmerQuery(farmerID).Documents(ctx), setOrderID)
	if err != nil {
		return nil, errors.Internal("Failed to list farmer orders", err)
	}
	return orders, nil
}

func (r *firestoreOrderRepository) ListByConsumer(ctx context.Context, consumerID string) ([]*entity.Order, error) {
	iter := r.client.Collection(ordersCollection).
		Where("consumerId", "==", consumerID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)

	orders, err := getAll(iter, setOrderID)
	if err != nil {
		return nil, errors.Internal("Failed to list orders", err)
	}
	return orders, nil
}

func (r *firestoreOrderRepository) Advance(ctx context.Context, id, farmerID string, next entity.OrderStatus) (*entity.Order, error) {
	ref := r.client.Collection(ordersCollection).Doc(id)

	var advanced *entity.Order
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		order, err := txGet[entity.Order](tx, ref, "Order")
		if err != nil {
			return err
		}
		if order.FarmerID != farmerID {
			return errors.Forbidden("Only the selling farmer can update this order", nil)
		}
		if err := order.Status.CanAdvance(next); err != nil {
			return repository.DomainError(err)
		}

		order.ID = id
		order.Status = next
		order.UpdatedAt = time.Now()
		advanced = order

		return tx.Update(ref, []firestore.Update{
			{Path: "status", Value: order.Status},
			{Path: "updatedAt", Value: order.UpdatedAt},
		})
	})
	if err != nil {
		return nil, txErr("Failed to update order status", err)
	}

	return advanced, nil
}

// WatchFarmer streams query snapshots so edits made outside this service,
// such as a manual cancellation, reach the console too.
func (r *firestoreOrderRepository) WatchFarmer(ctx context.Context, farmerID string, fn func([]*entity.Order)) error {
	it := r.farmerQuery(farmerID).Snapshots(ctx)
	defer it.Stop()

	for {
		snap, err := it.Next()
		if err != nil {
			if isDone(ctx, err) {
				return nil
			}
			logger.Error("order watch for farmer %s stopped: %v", farmerID, err)
			return errors.Internal("Order updates unavailable", err)
		}

		orders, err := getAll(snap.Documents, setOrderID)
		if err != nil {
			if isDone(ctx, err) {
				return nil
			}
			return errors.Internal("Failed to read order snapshot", err)
		}
		fn(orders)
	}
}
