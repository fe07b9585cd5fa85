package dto

import (
	"time"

	"github.com/contactbook/backend/internal/model"
)

// BirthdayLayout is the wire format for contact birthdays.
const BirthdayLayout = "2006-01-02"

type CreateContactRequest struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"required,min=3,max=30"`
	Birthday  string `json:"birthday" binding:"required,datetime=2006-01-02"`
}

type UpdateContactRequest struct {
	FirstName string `json:"first_name" binding:"omitempty,max=100"`
	LastName  string `json:"last_name" binding:"omitempty,max=100"`
	Email     string `json:"email" binding:"omitempty,email"`
	Phone     string `json:"phone" binding:"omitempty,min=3,max=30"`
	Birthday  string `json:"birthday" binding:"omitempty,datetime=2006-01-02"`
}

type ContactResponse struct {
	ID        uint      `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Birthday  string    `json:"birthday"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewContactResponse converts a contact model to its wire representation
func NewContactResponse(c *model.Contact) ContactResponse {
	return ContactResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Birthday:  time.Time(c.Birthday).Format(BirthdayLayout),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// NewContactResponseList converts a slice of contact models
func NewContactResponseList(contacts []model.Contact) []ContactResponse {
	res := make([]ContactResponse, 0, len(contacts))
	for i := range contacts {
		res = append(res, NewContactResponse(&contacts[i]))
	}
	return res
}

// NewUserResponse converts a user model to its wire representation
func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		Avatar:    u.Avatar,
	}
}
