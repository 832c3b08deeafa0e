package service

import (
	"context"
	"errors"
	"strings"

	"gotrip/internal/auth"
	apperrors "gotrip/internal/errors"
	"gotrip/internal/logger"
	"gotrip/internal/models"
	"gotrip/internal/repository"
	"gotrip/internal/validation"

	"github.com/google/uuid"
)

type AuthService struct {
	users  repository.UserStore
	tokens *auth.Manager
}

func NewAuthService(users repository.UserStore, tokens *auth.Manager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	hash, err := s.tokens.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Dependency("failed to hash password", err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         models.RoleUser,
		Phone:        strings.TrimSpace(req.Phone),
		IsActive:     true,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("An account with this email already exists")
		}
		return nil, storeErr(ctx, "create user", err)
	}

	logger.WithContext(ctx).Info("User registered", "user_id", user.ID)
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, storeErr(ctx, "get user", err)
	}
	// same answer for unknown email, wrong password and disabled account
	if user == nil || !user.IsActive || !s.tokens.CheckPassword(user.PasswordHash, req.Password) {
		return nil, apperrors.Unauthorized("Invalid email or password")
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*models.AuthResponse, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperrors.Dependency("failed to issue token", err)
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

// Authenticate verifies a bearer token and resolves it to an active user.
// The role is taken from storage so demotions apply immediately.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	actor, err := s.tokens.Verify(token)
	if err != nil {
		return nil, apperrors.Unauthorized("Invalid or expired token")
	}

	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, storeErr(ctx, "get user", err)
	}
	if user == nil || !user.IsActive {
		return nil, apperrors.Unauthorized("User no longer exists or is disabled")
	}
	return user, nil
}

func (s *AuthService) Me(ctx context.Context, actor models.Actor) (*models.User, error) {
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, storeErr(ctx, "get user", err)
	}
	if user == nil {
		return nil, apperrors.NotFound("User not found")
	}
	return user, nil
}

func (s *AuthService) UpdateRole(ctx context.Context, actor models.Actor, id uuid.UUID, req *models.UpdateRoleRequest) (*models.User, error) {
	if err := validation.Role(req); err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin {
		return nil, apperrors.Forbidden("Only admins can change roles")
	}

	if err := s.users.UpdateRole(ctx, id, req.Role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, storeErr(ctx, "update role", err)
	}

	logger.WithContext(ctx).Info("User role changed", "target_user_id", id, "role", req.Role)
	return s.Me(ctx, models.Actor{ID: id})
}
