package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"agrimarket/internal/domain/entity"
	"agrimarket/internal/domain/repository"
	"agrimarket/pkg/errors"
)

type firestorePoolRepository struct {
	client *firestore.Client
}

func NewFirestorePoolRepository(client *firestore.Client) repository.PoolRepository {
	return &firestorePoolRepository{
		client: client,
	}
}

func setPoolID(p *entity.Pool, id string) { p.ID = id }

func (r *firestorePoolRepository) Create(ctx context.Context, pool *entity.Pool) error {
	if pool.ID == "" {
		pool.ID = uuid.New().String()
	}

	now := time.Now()
	pool.CreatedAt = now
	pool.UpdatedAt = now

	creator := &entity.PoolMember{
		ID:       entity.PoolMemberID(pool.ID, pool.CreatedBy),
		PoolID:   pool.ID,
		FarmerID: pool.CreatedBy,
		JoinedAt: now,
	}

	batch := r.client.Batch()
	batch.Set(r.client.Collection(poolsCollection).Doc(pool.ID), pool)
	batch.Set(r.client.Collection(poolMembersCollection).Doc(creator.ID), creator)
	if _, err := batch.Commit(ctx); err != nil {
		return errors.Internal("Failed to create pool", err)
	}
	return nil
}

func (r *firestorePoolRepository) GetByID(ctx context.Context, id string) (*entity.Pool, error) {
	doc, err := r.client.Collection(poolsCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, readErr("Pool", err)
	}

	var pool entity.Pool
	if err := doc.DataTo(&pool); err != nil {
		return nil, errors.Internal("Failed to parse pool data", err)
	}
	pool.ID = doc.Ref.ID

	return &pool, nil
}

func (r *firestorePoolRepository) List(ctx context.Context) ([]*entity.Pool, error) {
	iter := r.client.Collection(poolsCollection).OrderBy("createdAt", firestore.Desc).Documents(ctx)

	pools, err := getAll(iter, setPoolID)
	if err != nil {
		return nil, errors.Internal("Failed to list pools", err)
	}
	return pools, nil
}

func (r *firestorePoolRepository) ListByCreator(ctx context.Context, farmerID string) ([]*entity.Pool, error) {
	iter := r.client.Collection(poolsCollection).
		Where("createdBy", "==", farmerID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)

	pools, err := getAll(iter, setPoolID)
	if err != nil {
		return nil, errors.Internal("Failed to list farmer pools", err)
	}
	return pools, nil
}

func (r *firestorePoolRepository) Join(ctx context.Context, poolID, farmerID string, qty int) (*entity.Pool, error) {
	poolRef := r.client.Collection(poolsCollection).Doc(poolID)
	memberRef := r.client.Collection(poolMembersCollection).Doc(entity.PoolMemberID(poolID, farmerID))

	var joined *entity.Pool
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		pool, err := txGet[entity.Pool](tx, poolRef, "Pool")
		if err != nil {
			return err
		}

		member := &entity.PoolMember{
			ID:       entity.PoolMemberID(poolID, farmerID),
			PoolID:   poolID,
			FarmerID: farmerID,
			JoinedAt: time.Now(),
		}
		newMember := true
		doc, err := tx.Get(memberRef)
		switch {
		case err == nil:
			if err := doc.DataTo(member); err != nil {
				return errors.Internal("Failed to parse pool member data", err)
			}
			newMember = false
		case status.Code(err) != codes.NotFound:
			return errors.Internal("Failed to read pool membership", err)
		}

		if err := pool.Join(qty, newMember); err != nil {
			return repository.DomainError(err)
		}
		member.Quantity += qty

		pool.ID = poolID
		pool.UpdatedAt = time.Now()
		joined = pool

		if err := tx.Set(memberRef, member); err != nil {
			return err
		}
		return tx.Update(poolRef, []firestore.Update{
			{Path: "currentQuantity", Value: pool.CurrentQuantity},
			{Path: "membersCount", Value: pool.MembersCount},
			{Path: "status", Value: pool.Status},
			{Path: "updatedAt", Value: pool.UpdatedAt},
		})
	})
	if err != nil {
		return nil, txErr("Failed to join pool", err)
	}

	return joined, nil
}

func (r *firestorePoolRepository) Sell(ctx context.Context, poolID string, qty int) error {
	ref := r.client.Collection(poolsCollection).Doc(poolID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		pool, err := txGet[entity.Pool](tx, ref, "Pool")
		if err != nil {
			return err
		}
		if err := pool.Sell(qty); err != nil {
			return repository.SaleError(err)
		}

		return tx.Update(ref, []firestore.Update{
			{Path: "soldQuantity", Value: pool.SoldQuantity},
			{Path: "updatedAt", Value: time.Now()},
		})
	})
	return txErr("Failed to reserve pool stock", err)
}

func (r *firestorePoolRepository) Unsell(ctx context.Context, poolID string, qty int) error {
	_, err := r.client.Collection(poolsCollection).Doc(poolID).Update(ctx, []firestore.Update{
		{Path: "soldQuantity", Value: firestore.Increment(-qty)},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return readErr("Pool", err)
	}
	return nil
}
