package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/model"
	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DTOs for Request validation
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// UserResponse never exposes the password hash.
type UserResponse struct {
	ID       string  `json:"id"`
	Email    string  `json:"email"`
	Name     string  `json:"name"`
	Role     string  `json:"role"`
	ClientID *string `json:"client_id"`
}

// AuthService issues portal tokens. The claims it signs are what the auth
// middleware turns back into an Actor.
type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	GetUser(ctx context.Context, actor *Actor) (*UserResponse, error)
}

type authService struct {
	userRepo repository.UserRepository
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, secret []byte, tokenTTL time.Duration) AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &authService{userRepo: userRepo, secret: secret, tokenTTL: tokenTTL, now: time.Now}
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(KindUnauthorized, "invalid email or password")
		}
		return nil, storeError("user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, newError(KindUnauthorized, "invalid email or password")
	}
	if user.Role == model.RoleClient && user.ClientID == nil {
		return nil, newError(KindForbidden, "client account is not linked to a client")
	}

	expiresAt := s.now().Add(s.tokenTTL)
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"exp":  expiresAt.Unix(),
	}
	if user.ClientID != nil {
		claims["client_id"] = user.ClientID.String()
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, &Error{Kind: KindPersistenceUnavailable, Message: "failed to generate token", Err: err}
	}

	return &TokenResponse{Token: tokenString, ExpiresAt: expiresAt.UTC().Format(time.RFC3339)}, nil
}

func (s *authService) GetUser(ctx context.Context, actor *Actor) (*UserResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, actor.UserID.String())
	if err != nil {
		return nil, storeError("user", err)
	}
	return toUserResponse(user), nil
}

func toUserResponse(u *model.User) *UserResponse {
	resp := &UserResponse{
		ID:    u.ID.String(),
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}
	if u.ClientID != nil && *u.ClientID != uuid.Nil {
		id := u.ClientID.String()
		resp.ClientID = &id
	}
	return resp
}
