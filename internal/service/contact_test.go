package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/contactbook/backend/internal/dto"
	apperrors "github.com/contactbook/backend/internal/errors"
	"github.com/contactbook/backend/internal/model"
)

type fakeContactStore struct {
	contacts []model.Contact
	nextID   uint
}

func newFakeContactStore() *fakeContactStore {
	return &fakeContactStore{nextID: 1}
}

func (f *fakeContactStore) ListByOwner(_ context.Context, userID uint) ([]model.Contact, error) {
	var out []model.Contact
	for _, c := range f.contacts {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeContactStore) GetByID(_ context.Context, id, userID uint) (*model.Contact, error) {
	for _, c := range f.contacts {
		if c.ID == id && c.UserID == userID {
			copied := c
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeContactStore) Create(_ context.Context, contact *model.Contact) error {
	contact.ID = f.nextID
	f.nextID++
	contact.CreatedAt = time.Now()
	contact.UpdatedAt = contact.CreatedAt
	f.contacts = append(f.contacts, *contact)
	return nil
}

func (f *fakeContactStore) Save(_ context.Context, contact *model.Contact) error {
	for i, c := range f.contacts {
		if c.ID == contact.ID {
			contact.UpdatedAt = time.Now()
			f.contacts[i] = *contact
			return nil
		}
	}
	return errors.New("contact vanished")
}

func (f *fakeContactStore) Delete(_ context.Context, contact *model.Contact) error {
	for i, c := range f.contacts {
		if c.ID == contact.ID {
			f.contacts = append(f.contacts[:i], f.contacts[i+1:]...)
			return nil
		}
	}
	return nil
}

// Search OR-combines the provided criteria, mirroring the repository's query
func (f *fakeContactStore) Search(_ context.Context, userID uint, firstName, lastName, email string) ([]model.Contact, error) {
	contains := func(haystack, needle string) bool {
		return needle != "" && strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
	}

	var out []model.Contact
	for _, c := range f.contacts {
		if c.UserID != userID {
			continue
		}
		if contains(c.FirstName, firstName) || contains(c.LastName, lastName) || contains(c.Email, email) {
			out = append(out, c)
		}
	}
	return out, nil
}

func newTestContactService(store *fakeContactStore) *ContactService {
	return NewContactService(store, NewCacheService(newFakeCacheClient(), time.Minute))
}

func seedContact(t *testing.T, svc *ContactService, userID uint, first, birthday string) *model.Contact {
	t.Helper()
	c, err := svc.Create(context.Background(), userID, &dto.CreateContactRequest{
		FirstName: first,
		LastName:  "Tester",
		Email:     fmt.Sprintf("%s-%d@example.com", strings.ToLower(first), userID),
		Phone:     fmt.Sprintf("+1555%04d%d", len(first), userID),
		Birthday:  birthday,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return c
}

func TestContactCRUDScopedToOwner(t *testing.T) {
	store := newFakeContactStore()
	svc := newTestContactService(store)
	ctx := context.Background()

	mine := seedContact(t, svc, 1, "Ann", "1990-04-12")
	seedContact(t, svc, 2, "Bob", "1985-09-01")

	got, err := svc.Get(ctx, 1, mine.ID)
	if err != nil {
		t.Fatalf("Get own contact failed: %v", err)
	}
	if got.FirstName != "Ann" {
		t.Errorf("expected Ann, got %s", got.FirstName)
	}

	// Another owner's id must look like it does not exist
	if _, err := svc.Get(ctx, 2, mine.ID); !errors.Is(err, apperrors.ErrContactNotFound) {
		t.Errorf("expected ErrContactNotFound for foreign contact, got %v", err)
	}
	if _, err := svc.Update(ctx, 2, mine.ID, &dto.UpdateContactRequest{FirstName: "Eve"}); !errors.Is(err, apperrors.ErrContactNotFound) {
		t.Errorf("expected ErrContactNotFound on foreign update, got %v", err)
	}
	if _, err := svc.Delete(ctx, 2, mine.ID); !errors.Is(err, apperrors.ErrContactNotFound) {
		t.Errorf("expected ErrContactNotFound on foreign delete, got %v", err)
	}
}

func TestContactUpdatePartialFields(t *testing.T) {
	store := newFakeContactStore()
	svc := newTestContactService(store)
	ctx := context.Background()

	c := seedContact(t, svc, 1, "Ann", "1990-04-12")

	updated, err := svc.Update(ctx, 1, c.ID, &dto.UpdateContactRequest{Phone: "+15550009999"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Phone != "+15550009999" {
		t.Errorf("phone not updated: %s", updated.Phone)
	}
	if updated.FirstName != "Ann" {
		t.Errorf("untouched field changed: %s", updated.FirstName)
	}
	if time.Time(updated.Birthday).Format(dto.BirthdayLayout) != "1990-04-12" {
		t.Errorf("birthday changed: %v", updated.Birthday)
	}
}

func TestContactListPagination(t *testing.T) {
	store := newFakeContactStore()
	svc := newTestContactService(store)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		seedContact(t, svc, 1, fmt.Sprintf("C%02d", i), "1990-04-12")
	}

	page, err := svc.List(ctx, 1, 0, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(page) != defaultPageLimit {
		t.Errorf("expected default page of %d, got %d", defaultPageLimit, len(page))
	}

	page, err = svc.List(ctx, 1, 10, 10)
	if err != nil {
		t.Fatalf("List offset failed: %v", err)
	}
	if len(page) != 5 {
		t.Errorf("expected tail page of 5, got %d", len(page))
	}

	page, err = svc.List(ctx, 1, 10, 100)
	if err != nil {
		t.Fatalf("List past end failed: %v", err)
	}
	if page != nil {
		t.Errorf("expected empty page past end, got %d", len(page))
	}
}

func TestContactSearchOwnerScoped(t *testing.T) {
	store := newFakeContactStore()
	svc := newTestContactService(store)
	ctx := context.Background()

	seedContact(t, svc, 1, "Ann", "1990-04-12")
	seedContact(t, svc, 2, "Annika", "1992-02-02")

	results, err := svc.Search(ctx, 1, "ann", "", "")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].FirstName != "Ann" {
		t.Errorf("search leaked across owners: %v", results)
	}

	if _, err = svc.Search(ctx, 1, "", "", ""); !errors.Is(err, apperrors.ErrContactNotFound) {
		t.Errorf("empty criteria should be NotFound, got %v", err)
	}
	if _, err = svc.Search(ctx, 1, "zz", "", ""); !errors.Is(err, apperrors.ErrContactNotFound) {
		t.Errorf("no match should be NotFound, got %v", err)
	}
}

func TestContactSearchMatchesAnyCriterion(t *testing.T) {
	store := newFakeContactStore()
	svc := newTestContactService(store)
	ctx := context.Background()

	seedContact(t, svc, 1, "Ann", "1990-04-12")

	// first name misses but last name hits; OR semantics still return the contact
	results, err := svc.Search(ctx, 1, "zzz", "Tester", "")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].LastName != "Tester" {
		t.Errorf("expected single match on last name, got %v", results)
	}
}

func TestContactWriteInvalidatesCache(t *testing.T) {
	store := newFakeContactStore()
	client := newFakeCacheClient()
	svc := NewContactService(store, NewCacheService(client, time.Minute))

	seedContact(t, svc, 1, "Ann", "1990-04-12")
	if len(client.deleted) == 0 || client.deleted[0] != "contacts:1:*" {
		t.Errorf("create should invalidate owner cache, got %v", client.deleted)
	}
}

func TestBirthdayInWindow(t *testing.T) {
	day := func(value string) time.Time {
		d, err := time.Parse(dto.BirthdayLayout, value)
		if err != nil {
			t.Fatal(err)
		}
		return d
	}

	tests := []struct {
		name     string
		birthday string
		today    string
		days     int
		want     bool
	}{
		{"today counts", "1990-06-15", "2026-06-15", 7, true},
		{"last day of window", "1990-06-22", "2026-06-15", 7, true},
		{"one past window", "1990-06-23", "2026-06-15", 7, false},
		{"yesterday excluded", "1990-06-14", "2026-06-15", 7, false},
		{"same month later", "1990-12-30", "2026-12-29", 7, true},
		{"wraps into january", "1990-01-03", "2026-12-29", 7, true},
		{"past wrap boundary", "1990-01-06", "2026-12-29", 7, false},
		{"birth year irrelevant", "2024-06-16", "2026-06-15", 7, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := birthdayInWindow(day(tt.birthday), day(tt.today), tt.days)
			if got != tt.want {
				t.Errorf("birthdayInWindow(%s, today=%s, %d) = %v, want %v",
					tt.birthday, tt.today, tt.days, got, tt.want)
			}
		})
	}
}

func TestUpcomingBirthdaysFiltersByOwnerAndWindow(t *testing.T) {
	store := newFakeContactStore()
	svc := newTestContactService(store)
	ctx := context.Background()

	now := time.Now()
	soon := now.AddDate(-30, 0, 3).Format(dto.BirthdayLayout)
	far := now.AddDate(-30, 0, 60).Format(dto.BirthdayLayout)

	seedContact(t, svc, 1, "Soon", soon)
	seedContact(t, svc, 1, "Far", far)
	seedContact(t, svc, 2, "Other", soon)

	upcoming, err := svc.UpcomingBirthdays(ctx, 1, 7)
	if err != nil {
		t.Fatalf("UpcomingBirthdays failed: %v", err)
	}
	if len(upcoming) != 1 || upcoming[0].FirstName != "Soon" {
		t.Errorf("expected only Soon, got %v", upcoming)
	}
}
