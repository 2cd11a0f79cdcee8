package service

import (
	"context"
	"strings"
	"time"

	"croctop/internal/auth"
	"croctop/internal/models"
	"croctop/internal/observability"
	"croctop/internal/repository"
	"croctop/internal/validation"
)

// TokenIssuer is implemented by auth.TokenService.
type TokenIssuer interface {
	IssuePair(identity models.Identity) (auth.TokenPair, error)
	Refresh(refreshToken string) (string, error)
}

type AuthService struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
	now      func() time.Time
}

type SignupInput struct {
	Firstname     string
	Lastname      string
	Username      string
	Email         string
	Password      string
	Birthday      string
	Bio           string
	PictureAvatar string
}

// SigninInput identifies the account by email or username.
type SigninInput struct {
	Email    string
	Username string
	Password string
}

type SigninResult struct {
	auth.TokenPair
	User *models.User
}

func NewAuthService(userRepo repository.UserRepository, tokens TokenIssuer) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		now:      time.Now,
	}
}

// Signup validates the profile, hashes the password and stores the user.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (user *models.User, err error) {
	defer func() { observability.RecordAuthEvent("signup", err) }()

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := validation.ValidateName("firstname", in.Firstname); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateName("lastname", in.Lastname); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	birthday, err := validation.ParseBirthday(in.Birthday, s.now())
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	digest, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user = &models.User{
		Firstname:     strings.TrimSpace(in.Firstname),
		Lastname:      strings.TrimSpace(in.Lastname),
		Username:      in.Username,
		Email:         in.Email,
		Password:      digest,
		Birthday:      &birthday,
		Bio:           in.Bio,
		PictureAvatar: in.PictureAvatar,
		Status:        models.StatusInactive,
		Role:          models.RoleNormal,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Signin checks the credentials, records the login and issues a token pair.
// Unknown account and wrong password are indistinguishable to the caller.
func (s *AuthService) Signin(ctx context.Context, in SigninInput) (res *SigninResult, err error) {
	defer func() { observability.RecordAuthEvent("signin", err) }()

	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)
	if (email == "" && username == "") || in.Password == "" {
		return nil, models.NewValidationError("email or username and password are required")
	}

	user, err := s.userRepo.FindByLogin(ctx, email, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewInvalidCredentialsError()
	}

	ok, err := auth.ComparePassword(in.Password, user.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if !ok {
		return nil, models.NewInvalidCredentialsError()
	}

	now := s.now().UTC()
	if err := s.userRepo.RecordLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now
	user.Status = models.StatusOnline

	pair, err := s.tokens.IssuePair(user.Identity())
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &SigninResult{TokenPair: pair, User: user}, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *AuthService) Refresh(_ context.Context, refreshToken string) (token string, err error) {
	defer func() { observability.RecordAuthEvent("refresh", err) }()

	if strings.TrimSpace(refreshToken) == "" {
		return "", models.NewUnauthenticatedError("Refresh token is required")
	}
	token, err = s.tokens.Refresh(refreshToken)
	if err != nil {
		return "", models.NewInvalidTokenError()
	}
	return token, nil
}
