package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"backoffice/internal/caching"
	"backoffice/internal/models"
	"backoffice/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *LoginRequest) (*models.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
	RevokeUserTokens(ctx context.Context, userID uuid.UUID) error
}

type authService struct {
	users      repositories.UserRepository
	cache      caching.CacheService
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	log        zerolog.Logger
}

func NewAuthService(users repositories.UserRepository, cache caching.CacheService, jwtSecret string, accessTTL, refreshTTL time.Duration, log zerolog.Logger) AuthService {
	return &authService{
		users:      users,
		cache:      cache,
		jwtSecret:  []byte(jwtSecret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		log:        log,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

// TokenClaims are the JWT claims carried on access tokens.
type TokenClaims struct {
	UserID  string `json:"user_id"`
	TokenID string `json:"token_id"`
	jwt.RegisteredClaims
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, errors.New("email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*models.User, *TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		// Same failure for unknown email and bad password.
		return nil, nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh rotates a refresh token: the presented token is deleted and a new
// pair is issued. Refresh tokens are opaque "<user id>.<secret>" strings; only
// a hash of the secret is stored server-side.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userPart, secret, found := strings.Cut(refreshToken, ".")
	if !found {
		return nil, ErrInvalidCredentials
	}
	userID, err := uuid.Parse(userPart)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	cacheKey := refreshTokenKey(userID, hashToken(secret))
	if _, err := s.cache.GetString(ctx, cacheKey); err != nil {
		if errors.Is(err, caching.ErrCacheMiss) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.cache.Delete(ctx, cacheKey); err != nil {
		s.log.Warn().Err(err).Msg("failed to delete rotated refresh token")
	}

	return s.issueTokens(ctx, userID)
}

func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredentials
	}
	return claims, nil
}

// RevokeUserTokens drops every refresh token issued to userID.
func (s *authService) RevokeUserTokens(ctx context.Context, userID uuid.UUID) error {
	return s.cache.DeleteByPrefix(ctx, fmt.Sprintf("refresh_token:%s:", userID))
}

func (s *authService) issueTokens(ctx context.Context, userID uuid.UUID) (*TokenPair, error) {
	now := time.Now()
	tokenID := uuid.NewString()

	claims := TokenClaims{
		UserID:  userID.String(),
		TokenID: tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "backoffice-auth",
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        tokenID,
		},
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %w", err)
	}

	secret, err := generateSecureToken()
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetString(ctx, refreshTokenKey(userID, hashToken(secret)), "1", s.refreshTTL); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.accessTTL.Seconds()),
		RefreshToken: userID.String() + "." + secret,
	}, nil
}

func refreshTokenKey(userID uuid.UUID, tokenHash string) string {
	return fmt.Sprintf("refresh_token:%s:%s", userID, tokenHash)
}

func generateSecureToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
