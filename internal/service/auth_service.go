package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"storefront-service/internal/apperror"
	"storefront-service/internal/auth"
	"storefront-service/internal/entity"
)

var passwordCost = bcrypt.DefaultCost

type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	CreateUser(ctx context.Context, user *entity.User) (*entity.User, error)
}

type TokenSigner interface {
	Issue(user *entity.User) (string, *auth.Claims, error)
	TTL() time.Duration
}

type SessionWriter interface {
	Save(ctx context.Context, sessionID, userID string, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) error
}

type AuthService struct {
	userRepo UserStore
	tokens   TokenSigner
	sessions SessionWriter
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(userRepo UserStore, tokens TokenSigner, sessions SessionWriter) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens, sessions: sessions}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, req *entity.RegisterRequest) (*entity.User, error) {
	if len(req.Password) < 8 {
		return nil, apperror.Validation("Invalid registration data", apperror.FieldError{Field: "password", Message: "must be at least 8 characters"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), passwordCost)
	if err != nil {
		logger.Error().Err(err).Msg("Error hashing password")
		return nil, err
	}

	user := &entity.User{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(req.Email),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	createdUser, err := s.userRepo.CreateUser(ctx, user)
	if err != nil {
		if !errors.Is(err, apperror.ErrValidation) {
			logger.Error().Err(err).Msg("Error creating user")
		}
		return nil, err
	}
	return createdUser, nil
}

// Login checks the credentials and opens a session. The returned token is
// valid until it expires or the session is closed by Logout.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	invalid := apperror.Unauthenticated("Invalid email or password")

	user, err := s.userRepo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", invalid
		}
		logger.Error().Err(err).Msg("Error getting user by email")
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", invalid
	}

	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		logger.Error().Err(err).Msgf("Error signing token for user %s", user.ID)
		return "", err
	}

	if err := s.sessions.Save(ctx, claims.ID, user.ID, s.tokens.TTL()); err != nil {
		logger.Error().Err(err).Msgf("Error saving session for user %s", user.ID)
		return "", err
	}
	return token, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		logger.Error().Err(err).Msgf("Error deleting session %s", sessionID)
		return err
	}
	return nil
}

func (s *AuthService) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			logger.Error().Err(err).Msgf("Error getting user by ID %s", userID)
		}
		return nil, err
	}
	return user, nil
}
