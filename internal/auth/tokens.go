// Package auth issues and verifies session tokens and hashes credentials.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"croctop/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is the lifetime of both access and refresh tokens.
const DefaultTokenTTL = 7 * 24 * time.Hour

// ErrInvalidToken is returned for every verification failure: bad signature,
// malformed token, expiry and wrong token kind are indistinguishable to callers.
var ErrInvalidToken = errors.New("invalid token")

// TokenKind selects which signing key a token is issued or verified with.
type TokenKind int

const (
	Access TokenKind = iota
	Refresh
)

func (k TokenKind) String() string {
	switch k {
	case Access:
		return "access"
	case Refresh:
		return "refresh"
	default:
		return "unknown"
	}
}

// Claims is the JWT payload for both token kinds.
type Claims struct {
	UserID    uint   `json:"userId"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is returned on signin.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenService is stateless: it holds only the two signing keys, issuer and clock.
type TokenService struct {
	keys   map[TokenKind][]byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService returns a service signing access and refresh tokens with distinct secrets.
func NewTokenService(accessSecret, refreshSecret, issuer string, ttl time.Duration) (*TokenService, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("token secrets must not be empty")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		keys: map[TokenKind][]byte{
			Access:  []byte(accessSecret),
			Refresh: []byte(refreshSecret),
		},
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// IssueAccessToken signs an access token for identity.
func (s *TokenService) IssueAccessToken(identity models.Identity) (string, error) {
	return s.issue(identity, Access)
}

// IssueRefreshToken signs a refresh token for identity.
func (s *TokenService) IssueRefreshToken(identity models.Identity) (string, error) {
	return s.issue(identity, Refresh)
}

// IssuePair signs an access and a refresh token for identity.
func (s *TokenService) IssuePair(identity models.Identity) (TokenPair, error) {
	access, err := s.IssueAccessToken(identity)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.IssueRefreshToken(identity)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *TokenService) issue(identity models.Identity, kind TokenKind) (string, error) {
	key, ok := s.keys[kind]
	if !ok {
		return "", fmt.Errorf("unknown token kind %d", kind)
	}

	now := s.now()
	claims := Claims{
		UserID:    identity.UserID,
		Role:      identity.Role,
		TokenType: kind.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(identity.UserID), 10),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// Verify checks signature, expiry and kind, returning the embedded identity.
func (s *TokenService) Verify(tokenString string, kind TokenKind) (models.Identity, error) {
	key, ok := s.keys[kind]
	if !ok || tokenString == "" {
		return models.Identity{}, ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return models.Identity{}, ErrInvalidToken
	}
	if claims.TokenType != kind.String() || claims.UserID == 0 {
		return models.Identity{}, ErrInvalidToken
	}
	if s.issuer != "" && claims.Issuer != s.issuer {
		return models.Identity{}, ErrInvalidToken
	}

	return models.Identity{UserID: claims.UserID, Role: claims.Role}, nil
}

// Refresh mints a new access token from a valid refresh token without touching
// credentials. Refresh tokens are neither rotated nor revocable.
func (s *TokenService) Refresh(refreshToken string) (string, error) {
	identity, err := s.Verify(refreshToken, Refresh)
	if err != nil {
		return "", err
	}
	return s.IssueAccessToken(identity)
}
