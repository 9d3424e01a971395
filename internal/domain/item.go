package domain

import (
	"context"
	"time"
)

// DefaultPostType is reported by Show when an item has no post type.
const DefaultPostType = "lost"

type Item struct {
	ID          uint    `gorm:"primaryKey"`
	Title       string  `gorm:"size:255;not null"`
	Description *string `gorm:"type:text"`
	Phone       *string `gorm:"size:255"`
	Address     *string `gorm:"size:255"`
	Destination *string `gorm:"size:255"`
	Time        *string `gorm:"column:time;size:255"`
	Date        *Date   `gorm:"type:date"`
	PostType    *string `gorm:"column:post_type;size:64"`
	IsTaken     bool    `gorm:"not null;default:false"`
	UserID      uint    `gorm:"not null;index"`
	Owner       *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Item) TableName() string { return "item" }

// ItemView is the wire shape of an item joined with its owner's contact
// fields. A missing owner leaves UserEmail and UserPhone nil.
type ItemView struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Phone       *string `json:"phone"`
	UserID      uint    `json:"user_id"`
	UserEmail   *string `json:"user_email"`
	UserPhone   *string `json:"user_phone"`
	Destination *string `json:"destination"`
	Time        *string `json:"time"`
	Address     *string `json:"address"`
	Date        *Date   `json:"date"`
	PostType    *string `json:"post_type"`
	IsTaken     bool    `json:"is_taken"`
}

func NewItemView(it *Item) ItemView {
	v := ItemView{
		ID:          it.ID,
		Title:       it.Title,
		Description: it.Description,
		Phone:       it.Phone,
		UserID:      it.UserID,
		Destination: it.Destination,
		Time:        it.Time,
		Address:     it.Address,
		Date:        it.Date,
		PostType:    it.PostType,
		IsTaken:     it.IsTaken,
	}
	if it.Owner != nil {
		email, phone := it.Owner.Email, it.Owner.Phone
		v.UserEmail, v.UserPhone = &email, &phone
	}
	return v
}

// ItemRepository lookups return (nil, nil) when no row matches. Found rows
// come with Owner preloaded.
type ItemRepository interface {
	Create(ctx context.Context, it *Item) error
	FindByID(ctx context.Context, id uint) (*Item, error)
	List(ctx context.Context) ([]Item, error)
	// Update applies column values to the item owned by ownerID.
	Update(ctx context.Context, id, ownerID uint, fields map[string]any) error
	// MarkTaken flips is_taken only if it is still false and reports
	// whether this call performed the transition.
	MarkTaken(ctx context.Context, id uint) (bool, error)
	Delete(ctx context.Context, id, ownerID uint) (bool, error)
}
