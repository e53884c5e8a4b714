package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/mbnr/matrimonial/internal/models"
	"github.com/mbnr/matrimonial/pkg/auth"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, id string, user *models.User) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

// UserUpdate is the set of account fields a user may change. Nil fields are left untouched.
type UserUpdate struct {
	Name   *string
	Gender *string
	DOB    *time.Time
}

// UserPage is one page of the admin user listing.
type UserPage struct {
	Users []*models.User
	models.Page
}

// UserService handles user business logic
type UserService struct {
	repo   UserRepository
	logger *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(repo UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger,
	}
}

// GetUserByID retrieves a user by ID. Users may read their own record; admins may read any.
func (s *UserService) GetUserByID(ctx context.Context, requester *models.User, id string) (*models.User, error) {
	if requester.ID != id && requester.Role != models.RoleAdmin {
		return nil, models.ErrNotSelfOrAdmin
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.InfoContext(ctx, "user not found", slog.String("user_id", id))
			return nil, models.ErrUserNotFound
		}
		s.logger.ErrorContext(ctx, "failed to get user", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return user, nil
}

// ListUsers retrieves one page of users, newest first
func (s *UserService) ListUsers(ctx context.Context, page, limit int) (*UserPage, error) {
	page, limit = normalizePage(page, limit)

	users, err := s.repo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list users", slog.Int("page", page), slog.Int("limit", limit), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to count users", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &UserPage{Users: users, Page: models.NewPage(page, limit, total)}, nil
}

// UpdateUser applies upd to user id. Users may update their own record; admins may update any.
func (s *UserService) UpdateUser(ctx context.Context, requester *models.User, id string, upd UserUpdate) (*models.User, error) {
	user, err := s.GetUserByID(ctx, requester, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		user.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Gender != nil {
		user.Gender = *upd.Gender
	}
	if upd.DOB != nil {
		user.DOB = upd.DOB
	}

	updated, err := s.repo.Update(ctx, id, user)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to update user", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.InfoContext(ctx, "user updated", slog.String("user_id", id))
	return updated, nil
}

// DeleteUser removes user id and everything it owns. Users may delete their
// own account; admins may delete any non-admin account.
func (s *UserService) DeleteUser(ctx context.Context, requester *models.User, id string) error {
	user, err := s.GetUserByID(ctx, requester, id)
	if err != nil {
		return err
	}

	if user.Role == models.RoleAdmin {
		return models.ErrAdminUndeletable
	}

	if err := s.repo.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrUserNotFound
		}
		s.logger.ErrorContext(ctx, "failed to delete user", slog.String("user_id", user.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.InfoContext(ctx, "user deleted",
		slog.String("user_id", user.ID),
		slog.String("deleted_by", requester.ID))
	return nil
}

// EnsureAdmin creates the bootstrap admin account when no user holds email.
// An existing account is left as it is.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password, name string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin, err := s.repo.Create(ctx, &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         models.RoleAdmin,
		Verified:     true,
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "bootstrap admin created", slog.String("user_id", admin.ID))
	return nil
}
