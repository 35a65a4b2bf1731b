package usecase

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/chatify/chatify-api/internal/model"
	"github.com/chatify/chatify-api/internal/repository"
)

// UserUsecase defines profile-related use cases.
type UserUsecase interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, params UpdateProfileParams) (*model.User, error)
}

// UpdateProfileParams defines the optional profile fields to update.
type UpdateProfileParams struct {
	Username *string
}

type userUsecase struct {
	userRepo repository.UserRepository
}

// NewUserUsecase creates a new instance of UserUsecase.
func NewUserUsecase(userRepo repository.UserRepository) UserUsecase {
	return &userUsecase{userRepo: userRepo}
}

func (u *userUsecase) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := u.userRepo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

func (u *userUsecase) UpdateProfile(
	ctx context.Context,
	id string,
	params UpdateProfileParams,
) (*model.User, error) {
	user, err := u.userRepo.UpdateUser(ctx, id, repository.UpdateUserParams{
		Username: params.Username,
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}
