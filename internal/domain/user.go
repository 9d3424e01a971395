package domain

import (
	"context"
	"time"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleDriver  Role = "driver"
	RoleUser    Role = "user"
)

type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Email         string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Phone         string    `gorm:"uniqueIndex;size:15;not null" json:"phone"`
	Birthday      *Date     `gorm:"type:date" json:"birthday"`
	Gender        *string   `gorm:"size:16" json:"gender"`
	DriverLicense *string   `gorm:"column:driverlicense;size:255" json:"driverlicense"`
	Role          Role      `gorm:"size:16;not null;default:user" json:"role"`
	PasswordHash  string    `gorm:"column:password;size:255;not null" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

type UserQuery struct {
	Offset int
	Limit  int // <= 0 means no limit
	Q      string
	Role   Role
}

// UserRepository lookups return (nil, nil) when no row matches.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	PhoneTaken(ctx context.Context, phone string) (bool, error)
	List(ctx context.Context, q UserQuery) ([]User, int64, error)
	UpdateRole(ctx context.Context, id uint, role Role) (bool, error)
	UpdatePassword(ctx context.Context, id uint, hash string) error
	// Delete removes the user and every item the user owns.
	Delete(ctx context.Context, id uint) (bool, error)
}
