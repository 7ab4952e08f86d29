package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"agrimarket/internal/domain/entity"
	"agrimarket/internal/domain/repository"
	"agrimarket/pkg/errors"
)

type firestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) repository.UserRepository {
	return &firestoreUserRepository{
		client: client,
	}
}

func (r *firestoreUserRepository) Create(ctx context.Context, user *entity.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.client.Collection(usersCollection).Doc(user.ID).Set(ctx, user)
	if err != nil {
		return errors.Internal("Failed to create user profile", err)
	}
	return nil
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	doc, err := r.client.Collection(usersCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, readErr("User", err)
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}
	user.ID = doc.Ref.ID

	return &user, nil
}

// Update rewrites the owner-editable profile fields. Rating fields are left
// to the review transaction.
func (r *firestoreUserRepository) Update(ctx context.Context, user *entity.User) error {
	user.UpdatedAt = time.Now()

	updates := []firestore.Update{
		{Path: "fullName", Value: user.FullName},
		{Path: "phone", Value: user.Phone},
		{Path: "paymentId", Value: user.PaymentID},
		{Path: "address", Value: user.Address},
		{Path: "city", Value: user.City},
		{Path: "state", Value: user.State},
		{Path: "pincode", Value: user.Pincode},
		{Path: "cropsGrown", Value: user.CropsGrown},
		{Path: "updatedAt", Value: user.UpdatedAt},
	}
	if user.Farm != nil {
		updates = append(updates, firestore.Update{Path: "farm", Value: user.Farm})
	}

	_, err := r.client.Collection(usersCollection).Doc(user.ID).Update(ctx, updates)
	if err != nil {
		return readErr("User", err)
	}
	return nil
}

func (r *firestoreUserRepository) ListByRole(ctx context.Context, role entity.Role) ([]*entity.User, error) {
	iter := r.client.Collection(usersCollection).Where("role", "==", string(role)).Documents(ctx)

	users, err := getAll(iter, func(u *entity.User, id string) { u.ID = id })
	if err != nil {
		return nil, errors.Internal("Failed to list users", err)
	}
	return users, nil
}
