package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"lostfound-api/internal/domain"
)

type ItemRepo struct{ db *gorm.DB }

func NewItemRepo(db *gorm.DB) *ItemRepo { return &ItemRepo{db: db} }

var _ domain.ItemRepository = (*ItemRepo)(nil)

// 只取联系方式字段，避免把密码哈希读出来
func ownerColumns(db *gorm.DB) *gorm.DB { return db.Select("id", "email", "phone") }

func (r *ItemRepo) Create(ctx context.Context, it *domain.Item) error {
	if err := r.db.WithContext(ctx).Omit("Owner").Create(it).Error; err != nil {
		return err
	}
	var owner domain.User
	err := ownerColumns(r.db.WithContext(ctx)).First(&owner, "id = ?", it.UserID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		it.Owner = nil
	case err != nil:
		return err
	default:
		it.Owner = &owner
	}
	return nil
}

func (r *ItemRepo) FindByID(ctx context.Context, id uint) (*domain.Item, error) {
	var it domain.Item
	err := r.db.WithContext(ctx).Preload("Owner", ownerColumns).First(&it, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *ItemRepo) List(ctx context.Context) ([]domain.Item, error) {
	items := make([]domain.Item, 0)
	err := r.db.WithContext(ctx).Preload("Owner", ownerColumns).Order("id ASC").Find(&items).Error
	return items, err
}

func (r *ItemRepo) Update(ctx context.Context, id, ownerID uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&domain.Item{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Updates(fields).Error
}

// MarkTaken 条件更新保证并发下只有一个请求完成 false→true
func (r *ItemRepo) MarkTaken(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Item{}).
		Where("id = ? AND is_taken = ?", id, false).
		Update("is_taken", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *ItemRepo) Delete(ctx context.Context, id, ownerID uint) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).Delete(&domain.Item{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
