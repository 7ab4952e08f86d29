package usecase

import (
	"context"
	"sort"
	"strings"

	"agrimarket/internal/domain/entity"
	"agrimarket/internal/domain/repository"
	"agrimarket/pkg/errors"
)

type UserUseCase struct {
	userRepo repository.UserRepository
}

func NewUserUseCase(userRepo repository.UserRepository) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
	}
}

func (uc *UserUseCase) GetProfile(ctx context.Context, s Session) (*entity.User, error) {
	if !s.Authenticated() {
		return nil, errors.Unauthorized("Please log in to continue", nil)
	}
	return uc.userRepo.GetByID(ctx, s.UserID)
}

// UpdateProfileInput holds the owner-editable fields. Nil means unchanged.
type UpdateProfileInput struct {
	FullName   *string
	Phone      *string
	PaymentID  *string
	Address    *string
	City       *string
	State      *string
	Pincode    *string
	FarmSize   *float64
	Location   *string
	CropsGrown []string
}

func (uc *UserUseCase) UpdateProfile(ctx context.Context, s Session, input UpdateProfileInput) (*entity.User, error) {
	if !s.Authenticated() {
		return nil, errors.Unauthorized("Please log in to continue", nil)
	}

	user, err := uc.userRepo.GetByID(ctx, s.UserID)
	if err != nil {
		return nil, err
	}

	if input.PaymentID != nil {
		id := strings.TrimSpace(*input.PaymentID)
		if id != "" && !entity.ValidPaymentID(id) {
			return nil, errors.Validation("payment_id", "payment_id must look like name@bank")
		}
		user.PaymentID = id
	}

	setString(&user.FullName, input.FullName)
	setString(&user.Phone, input.Phone)
	setString(&user.Address, input.Address)
	setString(&user.City, input.City)
	setString(&user.State, input.State)
	setString(&user.Pincode, input.Pincode)

	if user.IsFarmer() {
		if user.Farm == nil {
			user.Farm = &entity.Farm{Unit: "acres"}
		}
		if input.FarmSize != nil {
			if *input.FarmSize < 0 {
				return nil, errors.Validation("farm_size", "farm_size must not be negative")
			}
			user.Farm.Size = *input.FarmSize
		}
		setString(&user.Farm.Location, input.Location)
		if input.CropsGrown != nil {
			user.CropsGrown = input.CropsGrown
		}
	}

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListFarmers returns every farmer, best rated first.
func (uc *UserUseCase) ListFarmers(ctx context.Context) ([]*entity.User, error) {
	farmers, err := uc.userRepo.ListByRole(ctx, entity.RoleFarmer)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(farmers, func(i, j int) bool {
		if farmers[i].Rating != farmers[j].Rating {
			return farmers[i].Rating > farmers[j].Rating
		}
		return farmers[i].RatingCount > farmers[j].RatingCount
	})
	return farmers, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
