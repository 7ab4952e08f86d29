package usecase

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"agrimarket/internal/domain/entity"
	"agrimarket/internal/domain/repository"
	"agrimarket/pkg/errors"
	"agrimarket/pkg/logger"
)

type AuthUseCase struct {
	userRepo repository.UserRepository
	identity IdentityProvider
	now      func() time.Time
}

func NewAuthUseCase(userRepo repository.UserRepository, identity IdentityProvider) *AuthUseCase {
	return &AuthUseCase{
		userRepo: userRepo,
		identity: identity,
		now:      time.Now,
	}
}

type RegisterInput struct {
	Email     string
	Password  string
	Role      entity.Role
	FullName  string
	Phone     string
	PaymentID string
	FarmSize  float64
	Location  string
}

type LoginResult struct {
	UserID       string      `json:"user_id"`
	Role         entity.Role `json:"role"`
	Token        string      `json:"token"`
	RefreshToken string      `json:"refresh_token"`
}

// Register creates the account and profile, then sends the verification
// email. Login stays blocked until the address is verified.
func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*entity.User, error) {
	if !input.Role.Valid() {
		return nil, errors.Validation("role", "role must be farmer or consumer")
	}
	if input.PaymentID != "" && !entity.ValidPaymentID(input.PaymentID) {
		return nil, errors.Validation("payment_id", "payment_id must look like name@bank")
	}

	uid, err := uc.identity.CreateUser(ctx, input.Email, input.Password, input.FullName)
	if err != nil {
		if stderrors.Is(err, ErrEmailTaken) {
			return nil, errors.Conflict("Email already in use")
		}
		return nil, errors.Internal("Failed to create account", err)
	}

	user := &entity.User{
		ID:        uid,
		Email:     strings.ToLower(strings.TrimSpace(input.Email)),
		Role:      input.Role,
		FullName:  input.FullName,
		Phone:     input.Phone,
		PaymentID: input.PaymentID,
	}
	if input.Role == entity.RoleFarmer {
		user.Farm = &entity.Farm{
			Size:        input.FarmSize,
			Unit:        "acres",
			Location:    input.Location,
			MemberSince: uc.now().Format("2006-01"),
		}
		user.CropsGrown = []string{}
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		if delErr := uc.identity.DeleteUser(ctx, uid); delErr != nil {
			logger.Error("failed to roll back account %s after profile write failed: %v", uid, delErr)
		}
		return nil, errors.Internal("Failed to create user profile", err)
	}

	session, err := uc.identity.SignIn(ctx, input.Email, input.Password)
	if err != nil {
		logger.Warn("could not sign in %s to send verification email: %v", uid, err)
		return user, nil
	}
	if err := uc.identity.SendVerificationEmail(ctx, session.IDToken); err != nil {
		logger.Warn("failed to send verification email to %s: %v", uid, err)
	}

	return user, nil
}

func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	session, err := uc.identity.SignIn(ctx, email, password)
	if err != nil {
		logger.Debug("login failed for %s: %v", email, err)
		return nil, errors.Unauthorized("Invalid email or password", err)
	}

	verified, err := uc.identity.IsEmailVerified(ctx, session.UID)
	if err != nil {
		return nil, errors.Internal("Failed to check account status", err)
	}
	if !verified {
		return nil, errors.Forbidden("Please verify your email before logging in.", nil)
	}

	user, err := uc.userRepo.GetByID(ctx, session.UID)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, errors.NotFound("User profile", err)
		}
		return nil, err
	}

	return &LoginResult{
		UserID:       user.ID,
		Role:         user.Role,
		Token:        session.IDToken,
		RefreshToken: session.RefreshToken,
	}, nil
}

// ResetPassword never reports whether the address exists.
func (uc *AuthUseCase) ResetPassword(ctx context.Context, email string) {
	if err := uc.identity.SendPasswordReset(ctx, email); err != nil {
		logger.Warn("password reset for %s failed: %v", email, err)
	}
}
