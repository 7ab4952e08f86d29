package repository

import (
	"context"

	"cloud.google.com/go/firestore"

	"agrimarket/internal/domain/entity"
	"agrimarket/internal/domain/repository"
	"agrimarket/pkg/errors"
)

type firestoreCartRepository struct {
	client *firestore.Client
}

func NewFirestoreCartRepository(client *firestore.Client) repository.CartRepository {
	return &firestoreCartRepository{
		client: client,
	}
}

func (r *firestoreCartRepository) cart(userID string) *firestore.CollectionRef {
	return r.client.Collection(usersCollection).Doc(userID).Collection(cartCollection)
}

func (r *firestoreCartRepository) Upsert(ctx context.Context, userID string, line *entity.CartLine) error {
	_, err := r.cart(userID).Doc(line.ID).Set(ctx, line)
	if err != nil {
		return errors.Internal("Failed to save cart line", err)
	}
	return nil
}

func (r *firestoreCartRepository) Get(ctx context.Context, userID, lineID string) (*entity.CartLine, error) {
	doc, err := r.cart(userID).Doc(lineID).Get(ctx)
	if err != nil {
		return nil, readErr("Cart line", err)
	}

	var line entity.CartLine
	if err := doc.DataTo(&line); err != nil {
		return nil, errors.Internal("Failed to parse cart line", err)
	}
	line.ID = doc.Ref.ID

	return &line, nil
}

func (r *firestoreCartRepository) List(ctx context.Context, userID string) ([]*entity.CartLine, error) {
	iter := r.cart(userID).OrderBy("createdAt", firestore.Asc).Documents(ctx)

	lines, err := getAll(iter, func(l *entity.CartLine, id string) { l.ID = id })
	if err != nil {
		return nil, errors.Internal("Failed to list cart", err)
	}
	return lines, nil
}

// Delete succeeds whether or not the line exists.
func (r *firestoreCartRepository) Delete(ctx context.Context, userID, lineID string) error {
	_, err := r.cart(userID).Doc(lineID).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to remove cart line", err)
	}
	return nil
}
