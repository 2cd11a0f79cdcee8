package service

import (
	"context"
	"strings"
	"time"

	"croctop/internal/auth"
	"croctop/internal/models"
	"croctop/internal/repository"
	"croctop/internal/validation"
)

type UserService struct {
	userRepo repository.UserRepository
	graph    GraphMutator
	now      func() time.Time
}

// UpdateProfileInput carries a partial profile update. Nil fields are left unchanged.
type UpdateProfileInput struct {
	Firstname     *string
	Lastname      *string
	Username      *string
	Email         *string
	Password      *string
	Birthday      *string
	Bio           *string
	PictureAvatar *string
}

// FollowResult holds both ends of a follow edge after the change.
type FollowResult struct {
	Current *models.User
	Target  *models.User
}

func NewUserService(userRepo repository.UserRepository, graph GraphMutator) *UserService {
	return &UserService{
		userRepo: userRepo,
		graph:    graph,
		now:      time.Now,
	}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.UserSummary, error) {
	return s.userRepo.List(ctx, limit, offset)
}

// UpdateProfile applies a partial update to userID's profile. A new password is rehashed.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*models.User, error) {
	fields := map[string]interface{}{}

	if in.Firstname != nil {
		if err := validation.ValidateName("firstname", *in.Firstname); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		fields["firstname"] = strings.TrimSpace(*in.Firstname)
	}
	if in.Lastname != nil {
		if err := validation.ValidateName("lastname", *in.Lastname); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		fields["lastname"] = strings.TrimSpace(*in.Lastname)
	}
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if err := validation.ValidateUsername(username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		fields["username"] = username
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if err := validation.ValidateEmail(email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		fields["email"] = email
	}
	if in.Birthday != nil {
		birthday, err := validation.ParseBirthday(*in.Birthday, s.now())
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		fields["birthday"] = birthday
	}
	if in.Bio != nil {
		fields["bio"] = *in.Bio
	}
	if in.PictureAvatar != nil {
		fields["picture_avatar"] = *in.PictureAvatar
	}
	if in.Password != nil {
		if err := validation.ValidatePassword(*in.Password); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		digest, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		fields["password"] = digest
	}

	if err := s.userRepo.UpdateFields(ctx, userID, fields); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, userID)
}

func (s *UserService) Follow(ctx context.Context, followerID, targetID uint) (*FollowResult, error) {
	if err := s.graph.Follow(ctx, followerID, targetID); err != nil {
		return nil, err
	}
	return s.bothEnds(ctx, followerID, targetID)
}

func (s *UserService) Unfollow(ctx context.Context, followerID, targetID uint) (*FollowResult, error) {
	if err := s.graph.Unfollow(ctx, followerID, targetID); err != nil {
		return nil, err
	}
	return s.bothEnds(ctx, followerID, targetID)
}

func (s *UserService) bothEnds(ctx context.Context, currentID, targetID uint) (*FollowResult, error) {
	current, err := s.userRepo.GetByID(ctx, currentID)
	if err != nil {
		return nil, err
	}
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return &FollowResult{Current: current, Target: target}, nil
}
