package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/contactbook/backend/internal/dto"
	apperrors "github.com/contactbook/backend/internal/errors"
	"github.com/contactbook/backend/internal/model"
	"github.com/contactbook/backend/pkg/avatar"
	"github.com/contactbook/backend/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserStore is the persistence contract for user identity records
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	ConfirmEmail(ctx context.Context, email string) error
	UpdateRefreshToken(ctx context.Context, id uint, token string) error
	UpdatePassword(ctx context.Context, email, hashedPassword string) error
	UpdateAvatar(ctx context.Context, email, url string) (*model.User, error)
}

// Notifier queues email delivery without blocking the caller
type Notifier interface {
	EnqueueConfirmation(email, username, baseURL string)
	EnqueueResetPassword(email, username, baseURL, token string)
}

type UserService struct {
	store    UserStore
	tokens   *TokenService
	avatars  avatar.Resolver
	uploader avatar.Uploader
	notify   Notifier
}

func NewUserService(store UserStore, tokens *TokenService, avatars avatar.Resolver, uploader avatar.Uploader, notify Notifier) *UserService {
	return &UserService{
		store:    store,
		tokens:   tokens,
		avatars:  avatars,
		uploader: uploader,
		notify:   notify,
	}
}

// Signup registers a new user, derives a default avatar best-effort and
// queues a confirmation email. The store's uniqueness constraint, not the
// pre-check, decides conflicts: two racing signups are settled by the insert.
func (s *UserService) Signup(ctx context.Context, req *dto.SignupRequest, baseURL string) (*model.User, error) {
	if existing, err := s.store.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, apperrors.ErrEmailExists
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	hash, err := s.tokens.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	user := &model.User{
		Username: strings.TrimSpace(req.Username),
		Email:    req.Email,
		Password: hash,
	}

	// Avatar lookup is opportunistic; its failure never blocks creation
	if s.avatars != nil {
		if url, err := s.avatars.Resolve(req.Email); err == nil {
			user.Avatar = url
		} else {
			logger.GetLogger().Warn("Avatar lookup failed, continuing without",
				zap.String("email", req.Email),
				zap.Error(err),
			)
		}
	}

	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrEmailExists
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if s.notify != nil {
		s.notify.EnqueueConfirmation(user.Email, user.Username, baseURL)
	}

	logger.GetLogger().Info("User signed up",
		zap.String("email", user.Email),
		zap.Uint("user_id", user.ID),
	)
	return user, nil
}

// Login authenticates the user and rotates the stored refresh token
func (s *UserService) Login(ctx context.Context, email, password string) (*dto.TokenResponse, error) {
	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if !user.Confirmed {
		return nil, apperrors.ErrEmailNotConfirmed
	}
	if !s.tokens.VerifyPassword(password, user.Password) {
		logger.GetLogger().Warn("Login failed: incorrect password",
			zap.String("email", email),
		)
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issueTokenPair(ctx, user)
}

// Refresh rotates a valid refresh token. A token that verifies but does not
// match the stored slot signals reuse: the slot is cleared and the caller
// must log in again.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	email, err := s.tokens.DecodeRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidRefreshToken
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if user.RefreshToken != refreshToken {
		logger.GetLogger().Warn("Refresh token mismatch, clearing stored token",
			zap.String("email", email),
			zap.Uint("user_id", user.ID),
		)
		if err := s.store.UpdateRefreshToken(ctx, user.ID, ""); err != nil {
			logger.GetLogger().Error("Failed to clear refresh token",
				zap.Uint("user_id", user.ID),
				zap.Error(err),
			)
		}
		return nil, apperrors.ErrInvalidRefreshToken
	}

	return s.issueTokenPair(ctx, user)
}

func (s *UserService) issueTokenPair(ctx context.Context, user *model.User) (*dto.TokenResponse, error) {
	access, err := s.tokens.CreateAccessToken(user.Email)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	refresh, err := s.tokens.CreateRefreshToken(user.Email)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.store.UpdateRefreshToken(ctx, user.ID, refresh); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return &dto.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}

// ConfirmEmail validates a confirmation token and flips the confirmed flag.
// Returns already=true when the email was confirmed before.
func (s *UserService) ConfirmEmail(ctx context.Context, token string) (already bool, err error) {
	email, err := s.tokens.EmailFromToken(token)
	if err != nil {
		return false, apperrors.ErrVerification
	}

	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		// Conflate unknown user with a bad token
		return false, apperrors.ErrVerification
	}
	if user.Confirmed {
		return true, nil
	}

	if err := s.store.ConfirmEmail(ctx, email); err != nil {
		return false, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.GetLogger().Info("Email confirmed",
		zap.String("email", email),
	)
	return false, nil
}

// RequestEmail re-sends the confirmation email for an unconfirmed account.
// Returns already=true when the email is confirmed.
func (s *UserService) RequestEmail(ctx context.Context, email, baseURL string) (already bool, err error) {
	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, apperrors.ErrUserNotFound
		}
		return false, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if user.Confirmed {
		return true, nil
	}

	if s.notify != nil {
		s.notify.EnqueueConfirmation(user.Email, user.Username, baseURL)
	}
	return false, nil
}

// RequestResetPassword issues a reset token and queues the reset email
func (s *UserService) RequestResetPassword(ctx context.Context, email, baseURL string) error {
	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvalidCredentials
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	token, err := s.tokens.CreateResetPasswordToken(email)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if s.notify != nil {
		s.notify.EnqueueResetPassword(user.Email, user.Username, baseURL, token)
	}
	return nil
}

// ResetPassword verifies the reset token and replaces the stored hash.
// The token subject is authoritative: a token minted for one account can
// never reset another, regardless of the email the caller supplies.
func (s *UserService) ResetPassword(ctx context.Context, email, token, newPassword string) error {
	subject, ok := s.tokens.VerifyResetPasswordToken(token)
	if !ok || subject != email {
		return apperrors.ErrInvalidResetToken
	}

	if _, err := s.store.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	hash, err := s.tokens.HashPassword(newPassword)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.store.UpdatePassword(ctx, email, hash); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.GetLogger().Info("Password reset completed",
		zap.String("email", email),
	)
	return nil
}

// UpdateAvatar uploads the image to the image host and stores the URL
func (s *UserService) UpdateAvatar(ctx context.Context, user *model.User, file io.Reader) (*model.User, error) {
	if s.uploader == nil {
		return nil, apperrors.ErrServiceUnavailable
	}

	url, err := s.uploader.Upload(ctx, file, user.Username)
	if err != nil {
		logger.GetLogger().Error("Avatar upload failed",
			zap.String("email", user.Email),
			zap.Error(err),
		)
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	updated, err := s.store.UpdateAvatar(ctx, user.Email, url)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.GetLogger().Info("Avatar updated",
		zap.String("email", user.Email),
		zap.Uint("user_id", user.ID),
	)
	return updated, nil
}
