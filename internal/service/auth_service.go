// Package service provides application business logic (auth, posts, engagement).
package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenIssuer   = "inkwell-api"
	tokenAudience = "inkwell-client"
	tokenLifetime = 7 * 24 * time.Hour
)

// Identity is the decoded token payload exposed to handlers.
type Identity struct {
	UserID   uint   `json:"id"`
	Username string `json:"username"`
}

// AuthService handles registration, login and token verification.
type AuthService struct {
	userRepo  repository.UserRepository
	jwtSecret string
}

// NewAuthService returns a new AuthService.
func NewAuthService(userRepo repository.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{userRepo: userRepo, jwtSecret: jwtSecret}
}

// Register creates a new account. The returned user carries the bcrypt hash
// internally; it is never serialized.
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: username,
		Password: string(hashed),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks credentials and issues a signed token. Unknown username and
// wrong password produce the same error so it cannot be used to probe for
// accounts.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", models.NewInvalidCredentialsError()
	}

	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); cmpErr != nil {
		return nil, "", models.NewInvalidCredentialsError()
	}

	token, err := s.IssueToken(user.ID, user.Username)
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}
	return user, token, nil
}

// IssueToken creates a signed JWT for the given user.
func (s *AuthService) IssueToken(userID uint, username string) (string, error) {
	if s.jwtSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": username,
		"iss":      tokenIssuer,
		"aud":      tokenAudience,
		"exp":      now.Add(tokenLifetime).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      uuid.New().String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// VerifyToken parses and validates a token string and returns the identity
// it carries.
func (s *AuthService) VerifyToken(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, models.NewInvalidTokenError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewInvalidTokenError("Invalid token claims")
	}

	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != tokenIssuer {
		return nil, models.NewInvalidTokenError("Invalid token issuer")
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != tokenAudience {
		return nil, models.NewInvalidTokenError("Invalid token audience")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, models.NewInvalidTokenError("Invalid subject claim")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return nil, models.NewInvalidTokenError("Invalid user ID in token")
	}

	username, _ := claims["username"].(string)
	return &Identity{UserID: uint(userID), Username: username}, nil
}
