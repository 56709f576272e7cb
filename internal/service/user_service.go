package service

import (
	"context"

	"studentconnect/internal/models"
	"studentconnect/internal/repository"
	"studentconnect/internal/validation"
)

type UserService struct {
	userRepo repository.UserRepository
}

type UpdateProfileInput struct {
	UserID       uint
	Username     string
	FirstName    *string
	LastName     *string
	Bio          *string
	College      *string
	Major        *string
	Year         *int
	AvatarURL    *string
	GithubURL    *string
	LinkedinURL  *string
	PortfolioURL *string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) ListUsers(ctx context.Context, search string, limit, offset int) ([]models.User, int64, error) {
	return s.userRepo.List(ctx, search, limit, offset)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetActiveByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	const maxBioLen = 500

	if in.Username != "" && in.Username != user.Username {
		if err := validation.ValidateUsername(in.Username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Username = in.Username
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Bio != nil {
		if len(*in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = *in.Bio
	}
	if in.College != nil {
		user.College = *in.College
	}
	if in.Major != nil {
		user.Major = *in.Major
	}
	if in.Year != nil {
		if *in.Year < 1 || *in.Year > 8 {
			return nil, models.NewValidationError("Year must be between 1 and 8")
		}
		user.Year = *in.Year
	}
	if in.AvatarURL != nil {
		user.AvatarURL = *in.AvatarURL
	}
	if in.GithubURL != nil {
		user.GithubURL = *in.GithubURL
	}
	if in.LinkedinURL != nil {
		user.LinkedinURL = *in.LinkedinURL
	}
	if in.PortfolioURL != nil {
		user.PortfolioURL = *in.PortfolioURL
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// DeactivateAccount soft-deletes the account.
func (s *UserService) DeactivateAccount(ctx context.Context, userID uint) error {
	return s.userRepo.Deactivate(ctx, userID)
}

func (s *UserService) SetAdmin(ctx context.Context, targetID uint, isAdmin bool) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	user.IsAdmin = isAdmin
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
