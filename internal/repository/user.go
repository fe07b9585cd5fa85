package repository

import (
	"context"
	"time"

	"github.com/contactbook/backend/internal/model"
	"github.com/contactbook/backend/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByEmail finds a user by exact email match.
// Returns gorm.ErrRecordNotFound when no such user exists.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	start := time.Now()
	var user model.User

	result := r.db.WithContext(ctx).Where("email = ?", email).First(&user)
	if result.Error != nil {
		if result.Error != gorm.ErrRecordNotFound {
			logger.GetLogger().Error("Failed to get user by email",
				zap.String("email", email),
				zap.Duration("duration", time.Since(start)),
				zap.Error(result.Error),
			)
		}
		return nil, result.Error
	}

	return &user, nil
}

// Create inserts a new user. A unique-email violation surfaces as
// gorm.ErrDuplicatedKey, which is the authoritative conflict signal.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	start := time.Now()
	result := r.db.WithContext(ctx).Create(user)
	if result.Error != nil {
		logger.GetLogger().Error("Failed to create user",
			zap.String("email", user.Email),
			zap.Duration("duration", time.Since(start)),
			zap.Error(result.Error),
		)
		return result.Error
	}

	logger.GetLogger().Info("User created",
		zap.String("email", user.Email),
		zap.Uint("user_id", user.ID),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// ConfirmEmail flips the confirmed flag for the given email
func (r *UserRepository) ConfirmEmail(ctx context.Context, email string) error {
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ?", email).
		Update("confirmed", true)
	if result.Error != nil {
		logger.GetLogger().Error("Failed to confirm email",
			zap.String("email", email),
			zap.Error(result.Error),
		)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateRefreshToken stores the user's refresh token; an empty token clears the slot
func (r *UserRepository) UpdateRefreshToken(ctx context.Context, id uint, token string) error {
	var value any
	if token != "" {
		value = token
	}

	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("refresh_token", value)
	if result.Error != nil {
		logger.GetLogger().Error("Failed to update refresh token",
			zap.Uint("user_id", id),
			zap.Bool("has_token", token != ""),
			zap.Error(result.Error),
		)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdatePassword replaces the stored password hash for the given email
func (r *UserRepository) UpdatePassword(ctx context.Context, email, hashedPassword string) error {
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ?", email).
		Update("password", hashedPassword)
	if result.Error != nil {
		logger.GetLogger().Error("Failed to update password",
			zap.String("email", email),
			zap.Error(result.Error),
		)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.GetLogger().Info("User password updated",
		zap.String("email", email),
	)
	return nil
}

// UpdateAvatar stores the avatar URL and returns the updated user
func (r *UserRepository) UpdateAvatar(ctx context.Context, email, url string) (*model.User, error) {
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ?", email).
		Update("avatar", url)
	if result.Error != nil {
		logger.GetLogger().Error("Failed to update avatar",
			zap.String("email", email),
			zap.Error(result.Error),
		)
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	return r.GetByEmail(ctx, email)
}
