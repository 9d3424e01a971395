package domain

import (
	"context"
	"time"
)

type Feedback struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      *string   `gorm:"size:255" json:"name"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Rating    int       `gorm:"not null;default:5" json:"rating"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Feedback) TableName() string { return "feed_backs" }

type FeedbackRepository interface {
	Create(ctx context.Context, f *Feedback) error
	FindByID(ctx context.Context, id uint) (*Feedback, error)
	// List orders newest first.
	List(ctx context.Context) ([]Feedback, error)
	Update(ctx context.Context, id uint, fields map[string]any) (bool, error)
	Delete(ctx context.Context, id uint) (bool, error)
}
