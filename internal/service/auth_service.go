package service

import (
	"context"
	"strings"
	"time"

	"tecnopronto/internal/auth"
	"tecnopronto/internal/database"
	"tecnopronto/internal/models"
	"tecnopronto/internal/repository"
	"tecnopronto/internal/validation"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// AuthService registers accounts and issues access tokens.
type AuthService struct {
	userRepo repository.UserRepository
	rdb      *redis.Client
	secret   string
	now      func() time.Time
}

type SignupInput struct {
	Username string `json:"username" form:"username" validate:"required,min=3,max=30,username"`
	Email    string `json:"email" form:"email" validate:"required,email,max=254"`
	Password string `json:"password" form:"password" validate:"required,min=12,max=128,password"`
}

type LoginInput struct {
	Login    string `json:"login" form:"login" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// AuthResult is a freshly issued token for a user.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

func NewAuthService(userRepo repository.UserRepository, rdb *redis.Client, secret string) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		rdb:      rdb,
		secret:   secret,
		now:      time.Now,
	}
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, models.NewConflictError("Username or email already taken")
		}
		return nil, err
	}

	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Login = strings.TrimSpace(in.Login)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByLogin(ctx, in.Login)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewUnauthorizedError("Invalid credentials")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	return s.issue(user)
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if s.rdb == nil || claims == nil || claims.JTI == "" {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, auth.RevokedKey(claims.JTI), "1", ttl).Err()
}

// Username resolves a user's display name for request actors.
func (s *AuthService) Username(ctx context.Context, userID uint) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Username, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, claims, err := auth.IssueToken(s.secret, user.ID, s.now())
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{Token: token, ExpiresAt: claims.ExpiresAt, User: user}, nil
}
