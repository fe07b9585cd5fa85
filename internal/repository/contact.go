package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/contactbook/backend/internal/model"
	"github.com/contactbook/backend/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// ListByOwner returns all contacts belonging to the user
func (r *ContactRepository) ListByOwner(ctx context.Context, userID uint) ([]model.Contact, error) {
	start := time.Now()
	var contacts []model.Contact

	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id").
		Find(&contacts)
	if result.Error != nil {
		logger.GetLogger().Error("Failed to list contacts",
			zap.Uint("user_id", userID),
			zap.Duration("duration", time.Since(start)),
			zap.Error(result.Error),
		)
		return nil, result.Error
	}

	return contacts, nil
}

// GetByID returns the contact only when it belongs to the user.
// Missing ids and foreign ids both return (nil, nil).
func (r *ContactRepository) GetByID(ctx context.Context, id, userID uint) (*model.Contact, error) {
	var contact model.Contact

	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&contact)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.GetLogger().Error("Failed to get contact",
			zap.Uint("contact_id", id),
			zap.Uint("user_id", userID),
			zap.Error(result.Error),
		)
		return nil, result.Error
	}

	return &contact, nil
}

// Create inserts a new contact. Unique email/phone violations surface as
// gorm.ErrDuplicatedKey.
func (r *ContactRepository) Create(ctx context.Context, contact *model.Contact) error {
	result := r.db.WithContext(ctx).Create(contact)
	if result.Error != nil {
		logger.GetLogger().Error("Failed to create contact",
			zap.String("email", contact.Email),
			zap.Uint("user_id", contact.UserID),
			zap.Error(result.Error),
		)
		return result.Error
	}

	logger.GetLogger().Info("Contact created",
		zap.Uint("contact_id", contact.ID),
		zap.Uint("user_id", contact.UserID),
	)
	return nil
}

// Save persists field changes on an already-loaded contact,
// refreshing its updated_at timestamp
func (r *ContactRepository) Save(ctx context.Context, contact *model.Contact) error {
	result := r.db.WithContext(ctx).Save(contact)
	if result.Error != nil {
		logger.GetLogger().Error("Failed to update contact",
			zap.Uint("contact_id", contact.ID),
			zap.Uint("user_id", contact.UserID),
			zap.Error(result.Error),
		)
		return result.Error
	}
	return nil
}

// Delete removes the contact row
func (r *ContactRepository) Delete(ctx context.Context, contact *model.Contact) error {
	result := r.db.WithContext(ctx).Delete(contact)
	if result.Error != nil {
		logger.GetLogger().Error("Failed to delete contact",
			zap.Uint("contact_id", contact.ID),
			zap.Uint("user_id", contact.UserID),
			zap.Error(result.Error),
		)
		return result.Error
	}

	logger.GetLogger().Info("Contact deleted",
		zap.Uint("contact_id", contact.ID),
		zap.Uint("user_id", contact.UserID),
	)
	return nil
}

// Search returns the user's contacts matching any of the non-empty fields,
// case-insensitive partial match, OR-combined
func (r *ContactRepository) Search(ctx context.Context, userID uint, firstName, lastName, email string) ([]model.Contact, error) {
	var conds []string
	var args []any

	if firstName != "" {
		conds = append(conds, "first_name ILIKE ?")
		args = append(args, "%"+firstName+"%")
	}
	if lastName != "" {
		conds = append(conds, "last_name ILIKE ?")
		args = append(args, "%"+lastName+"%")
	}
	if email != "" {
		conds = append(conds, "email ILIKE ?")
		args = append(args, "%"+email+"%")
	}

	if len(conds) == 0 {
		return nil, nil
	}

	var contacts []model.Contact
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("("+strings.Join(conds, " OR ")+")", args...).
		Order("id").
		Find(&contacts)
	if result.Error != nil {
		logger.GetLogger().Error("Failed to search contacts",
			zap.Uint("user_id", userID),
			zap.Error(result.Error),
		)
		return nil, result.Error
	}

	return contacts, nil
}
