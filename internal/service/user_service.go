package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"idcore/api/internal/apperr"
	"idcore/api/internal/domain"
	"idcore/api/internal/repository"
)

// UserService covers profile management beyond the authentication
// flows: reads, name changes, password changes, verification, and
// account (de)activation.
type UserService struct {
	users repository.UserRepository
	log   zerolog.Logger
}

func NewUserService(users repository.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{users: users, log: log}
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (UserView, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return UserView{}, err
	}
	return viewOf(user), nil
}

type UpdateProfileInput struct {
	Name      string
	Bio       *string
	AvatarURL *string
}

// UpdateProfile replaces the display name, bio, and avatar URL in one
// write. Bio and avatar are cleared when nil.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (UserView, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return UserView{}, err
	}

	if err := user.UpdateName(input.Name); err != nil {
		return UserView{}, err
	}
	if err := user.UpdateBio(input.Bio); err != nil {
		return UserView{}, err
	}
	if err := user.UpdateAvatar(input.AvatarURL); err != nil {
		return UserView{}, err
	}

	if err := s.update(ctx, user); err != nil {
		return UserView{}, err
	}
	return viewOf(user), nil
}

type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

// ChangePassword verifies the current password before re-hashing the
// new one. The old plaintext stops working the moment the update lands.
func (s *UserService) ChangePassword(ctx context.Context, userID string, input ChangePasswordInput) error {
	user, err := s.load(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := user.VerifyPassword(input.CurrentPassword)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Authentication("Invalid current password")
	}

	if err := user.ChangePassword(input.NewPassword); err != nil {
		return err
	}
	if err := s.update(ctx, user); err != nil {
		return err
	}

	s.log.Info().Str("user_id", userID).Msg("password changed")
	return nil
}

func (s *UserService) VerifyEmail(ctx context.Context, userID string) error {
	user, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	user.VerifyEmail()
	return s.update(ctx, user)
}

func (s *UserService) Deactivate(ctx context.Context, userID string) error {
	user, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	user.Deactivate()
	if err := s.update(ctx, user); err != nil {
		return err
	}
	s.log.Info().Str("user_id", userID).Msg("account deactivated")
	return nil
}

func (s *UserService) Reactivate(ctx context.Context, userID string) error {
	user, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	user.Reactivate()
	return s.update(ctx, user)
}

// DeleteAccount is the explicit administrative removal; normal flows
// never delete users.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperr.NotFound("User not found")
		}
		return apperr.Internal("failed to delete user", err)
	}
	s.log.Info().Str("user_id", userID).Msg("account deleted")
	return nil
}

func (s *UserService) load(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("failed to load user", err)
	}
	return user, nil
}

func (s *UserService) update(ctx context.Context, user *domain.User) error {
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperr.NotFound("User not found")
		}
		return apperr.Internal("failed to update user", err)
	}
	return nil
}
