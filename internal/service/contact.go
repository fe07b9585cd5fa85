package service

import (
	"context"
	"errors"
	"time"

	"github.com/contactbook/backend/internal/dto"
	apperrors "github.com/contactbook/backend/internal/errors"
	"github.com/contactbook/backend/internal/model"
	"github.com/contactbook/backend/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// ContactStore is the persistence contract for contact records. GetByID
// returns (nil, nil) when the contact does not exist or belongs to another
// owner; the two cases are indistinguishable on purpose.
type ContactStore interface {
	ListByOwner(ctx context.Context, userID uint) ([]model.Contact, error)
	GetByID(ctx context.Context, id, userID uint) (*model.Contact, error)
	Create(ctx context.Context, contact *model.Contact) error
	Save(ctx context.Context, contact *model.Contact) error
	Delete(ctx context.Context, contact *model.Contact) error
	Search(ctx context.Context, userID uint, firstName, lastName, email string) ([]model.Contact, error)
}

type ContactService struct {
	store ContactStore
	cache *CacheService
}

func NewContactService(store ContactStore, cache *CacheService) *ContactService {
	return &ContactService{store: store, cache: cache}
}

// List returns one page of the owner's contacts. A non-positive limit falls
// back to the default page size.
func (s *ContactService) List(ctx context.Context, userID uint, limit, offset int) ([]model.Contact, error) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}

	contacts, err := s.store.ListByOwner(ctx, userID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if offset >= len(contacts) {
		return nil, nil
	}
	end := offset + limit
	if end > len(contacts) {
		end = len(contacts)
	}
	return contacts[offset:end], nil
}

func (s *ContactService) Get(ctx context.Context, userID, contactID uint) (*model.Contact, error) {
	contact, err := s.store.GetByID(ctx, contactID, userID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if contact == nil {
		return nil, apperrors.ErrContactNotFound
	}
	return contact, nil
}

func (s *ContactService) Create(ctx context.Context, userID uint, req *dto.CreateContactRequest) (*model.Contact, error) {
	birthday, err := time.Parse(dto.BirthdayLayout, req.Birthday)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInvalidInput, err)
	}

	contact := &model.Contact{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Birthday:  datatypes.Date(birthday),
		UserID:    userID,
	}

	if err := s.store.Create(ctx, contact); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.WrapError(apperrors.ErrInvalidInput, err)
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.cache.InvalidateUser(ctx, userID)

	logger.GetLogger().Info("Contact created",
		zap.Uint("contact_id", contact.ID),
		zap.Uint("user_id", userID),
	)
	return contact, nil
}

// Update applies only the fields present in the request
func (s *ContactService) Update(ctx context.Context, userID, contactID uint, req *dto.UpdateContactRequest) (*model.Contact, error) {
	contact, err := s.Get(ctx, userID, contactID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != "" {
		contact.FirstName = req.FirstName
	}
	if req.LastName != "" {
		contact.LastName = req.LastName
	}
	if req.Email != "" {
		contact.Email = req.Email
	}
	if req.Phone != "" {
		contact.Phone = req.Phone
	}
	if req.Birthday != "" {
		birthday, err := time.Parse(dto.BirthdayLayout, req.Birthday)
		if err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInvalidInput, err)
		}
		contact.Birthday = datatypes.Date(birthday)
	}

	if err := s.store.Save(ctx, contact); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.WrapError(apperrors.ErrInvalidInput, err)
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.cache.InvalidateUser(ctx, userID)
	return contact, nil
}

func (s *ContactService) Delete(ctx context.Context, userID, contactID uint) (*model.Contact, error) {
	contact, err := s.Get(ctx, userID, contactID)
	if err != nil {
		return nil, err
	}

	if err := s.store.Delete(ctx, contact); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.cache.InvalidateUser(ctx, userID)

	logger.GetLogger().Info("Contact deleted",
		zap.Uint("contact_id", contactID),
		zap.Uint("user_id", userID),
	)
	return contact, nil
}

// Search matches the owner's contacts on any combination of first name, last
// name and email. No match, and no criteria, both surface as NotFound.
func (s *ContactService) Search(ctx context.Context, userID uint, firstName, lastName, email string) ([]model.Contact, error) {
	if firstName == "" && lastName == "" && email == "" {
		return nil, apperrors.ErrContactNotFound
	}
	contacts, err := s.store.Search(ctx, userID, firstName, lastName, email)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if len(contacts) == 0 {
		return nil, apperrors.ErrContactNotFound
	}
	return contacts, nil
}

// UpcomingBirthdays returns the owner's contacts whose birthday falls within
// the next days days, today included. Birth years are ignored.
func (s *ContactService) UpcomingBirthdays(ctx context.Context, userID uint, days int) ([]model.Contact, error) {
	if days <= 0 {
		days = 7
	}

	contacts, err := s.store.ListByOwner(ctx, userID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	today := time.Now()
	var upcoming []model.Contact
	for _, c := range contacts {
		if birthdayInWindow(time.Time(c.Birthday), today, days) {
			upcoming = append(upcoming, c)
		}
	}
	return upcoming, nil
}

// birthdayInWindow reports whether the next anniversary of birthday falls
// within [today, today+days]. The birthday is projected onto the current
// year and rolled into the next one when it already passed, so a window
// spanning New Year still matches early-January birthdays.
func birthdayInWindow(birthday, today time.Time, days int) bool {
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	next := time.Date(today.Year(), birthday.Month(), birthday.Day(), 0, 0, 0, 0, time.UTC)
	if next.Before(today) {
		next = next.AddDate(1, 0, 0)
	}

	return !next.After(today.AddDate(0, 0, days))
}
