package services

import (
	"context"
	"errors"

	"facility-ops-api-server/internal/access"
	"facility-ops-api-server/internal/apperror"
	"facility-ops-api-server/internal/auth"
	"facility-ops-api-server/internal/database"
	"facility-ops-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService struct {
	users  UserStore
	tokens *auth.TokenService
	logger *zap.Logger
}

func NewAuthService(users UserStore, tokens *auth.TokenService, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, logger: logger}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, apperror.Validation("email and password are required")
	}
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperror.Unauthorized("Invalid email or password")
	}
	if err != nil {
		return nil, storeError(err, "User", "")
	}
	if !auth.CheckPasswordHash(password, user.Password) {
		s.logger.Info("login rejected", zap.String("user_id", user.ID.Hex()))
		return nil, apperror.Unauthorized("Invalid email or password")
	}
	if user.Status != models.UserStatusActive {
		return nil, apperror.Forbidden("Account is %s", user.Status)
	}

	token, err := s.tokens.Generate(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return nil, apperror.Internal(err, "Failed to issue token")
	}
	return &LoginResult{Token: token, User: user}, nil
}

// Authenticate verifies a bearer token and loads the caller fresh from the store,
// so role and facility changes apply without re-login.
func (s *AuthService) Authenticate(ctx context.Context, token string) (access.Actor, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return access.Actor{}, apperror.Unauthorized("Invalid or expired token")
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return access.Actor{}, apperror.Unauthorized("Invalid or expired token")
	}
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return access.Actor{}, apperror.Unauthorized("User no longer exists")
	}
	if err != nil {
		return access.Actor{}, storeError(err, "User", "")
	}
	if user.Status != models.UserStatusActive {
		return access.Actor{}, apperror.Forbidden("Account is %s", user.Status)
	}
	return access.ActorFromUser(user), nil
}

func (s *AuthService) Me(ctx context.Context, actor access.Actor) (*models.User, error) {
	user, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, storeError(err, "User", "")
	}
	return user, nil
}
