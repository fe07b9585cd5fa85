package model

import (
	"time"

	"gorm.io/datatypes"
)

type Contact struct {
	ID        uint           `gorm:"primaryKey"`
	FirstName string         `gorm:"column:first_name;size:100;not null"`
	LastName  string         `gorm:"column:last_name;size:100;not null"`
	Email     string         `gorm:"column:email;size:250;uniqueIndex;not null"`
	Phone     string         `gorm:"column:phone;size:30;uniqueIndex;not null"`
	Birthday  datatypes.Date `gorm:"column:birthday;not null"`
	CreatedAt time.Time      `gorm:"column:created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
	UserID    uint           `gorm:"column:user_id;index;not null"`
	User      User           `gorm:"constraint:OnDelete:CASCADE"`
}
