package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/gradetrack-api/internal/dto"
	"github.com/noah-isme/gradetrack-api/internal/models"
	appErrors "github.com/noah-isme/gradetrack-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateSettings(ctx context.Context, id string, settings models.UserSettings) error
	SoftDelete(ctx context.Context, id string, at time.Time) error
	RevokeUserRefreshTokens(ctx context.Context, userID string) error
	Activity(ctx context.Context, userID string) (*models.UserActivity, error)
	Stats(ctx context.Context) (*models.SystemStats, error)
}

// UserService handles account self-service and user administration.
type UserService struct {
	repo      userRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, validator: validate, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// List returns paginated users and pagination metadata.
func (s *UserService) List(ctx context.Context, query dto.UserQuery) ([]models.User, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, validationError(err, "invalid user filter")
	}
	filter := models.UserFilter{
		Search:   strings.TrimSpace(query.Search),
		Role:     models.UserRole(query.Role),
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list users")
	}
	if users == nil {
		users = []models.User{}
	}
	return users, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns a user with a summary of their stored records.
func (s *UserService) Get(ctx context.Context, id string) (*models.UserDetail, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "user")
	}
	activity, err := s.repo.Activity(ctx, id)
	if err != nil {
		return nil, internalError(err, "failed to load user activity")
	}
	return &models.UserDetail{User: user, UserActivity: *activity}, nil
}

// ResetPassword sets a new password for a user and signs them out everywhere.
func (s *UserService) ResetPassword(ctx context.Context, actor *models.JWTClaims, id string, req dto.ResetPasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid password reset payload")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return internalError(err, "failed to hash password")
	}
	if err := s.repo.UpdatePassword(ctx, id, string(hash)); err != nil {
		return writeError(err, "failed to reset password")
	}
	if err := s.repo.RevokeUserRefreshTokens(ctx, id); err != nil {
		s.logger.Warn("failed to revoke sessions after password reset", zap.String("user_id", id), zap.Error(err))
	}
	s.logger.Info("password reset", zap.String("user_id", id), zap.String("actor_id", actorID(actor)))
	return nil
}

// Delete soft deletes another user's account.
func (s *UserService) Delete(ctx context.Context, actor *models.JWTClaims, id string) error {
	if actor != nil && actor.UserID == id {
		return appErrors.Clone(appErrors.ErrValidation, "use account deletion to remove your own account")
	}
	if err := s.repo.SoftDelete(ctx, id, s.now()); err != nil {
		return writeError(err, "failed to delete user")
	}
	s.logger.Info("user deleted", zap.String("user_id", id), zap.String("actor_id", actorID(actor)))
	return nil
}

// DeleteAccount soft deletes the caller's own account.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.repo.SoftDelete(ctx, userID, s.now()); err != nil {
		return writeError(err, "failed to delete account")
	}
	s.logger.Info("account deleted", zap.String("user_id", userID))
	return nil
}

// UpdateSettings applies the provided settings fields and returns the result.
func (s *UserService) UpdateSettings(ctx context.Context, userID string, req dto.UpdateSettingsRequest) (*models.UserSettings, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid settings payload")
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, lookupError(err, "user")
	}
	if user.Deleted() {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}

	settings := user.Settings
	applySettings(&settings, req)
	if err := s.repo.UpdateSettings(ctx, userID, settings); err != nil {
		return nil, writeError(err, "failed to update settings")
	}
	return &settings, nil
}

// Stats returns system wide record counts.
func (s *UserService) Stats(ctx context.Context) (*models.SystemStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, internalError(err, "failed to load statistics")
	}
	return stats, nil
}

func applySettings(settings *models.UserSettings, req dto.UpdateSettingsRequest) {
	if req.DarkMode != nil {
		settings.DarkMode = *req.DarkMode
	}
	if req.Notifications != nil {
		settings.Notifications = *req.Notifications
	}
	if req.EmailNotifications != nil {
		settings.EmailNotifications = *req.EmailNotifications
	}
	if req.CalendarSync != nil {
		settings.CalendarSync = *req.CalendarSync
	}
	if req.Timezone != nil {
		settings.Timezone = *req.Timezone
	}
	if req.DateFormat != nil {
		settings.DateFormat = *req.DateFormat
	}
	if req.TimeFormat != nil {
		settings.TimeFormat = *req.TimeFormat
	}
	if req.DefaultReminderMinutes != nil {
		settings.DefaultReminderMinutes = *req.DefaultReminderMinutes
	}
}

func writeError(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return internalError(err, message)
}

func actorID(actor *models.JWTClaims) string {
	if actor == nil {
		return ""
	}
	return actor.UserID
}
