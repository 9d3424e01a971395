package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"lostfound-api/internal/domain"
)

type FeedbackRepo struct{ db *gorm.DB }

func NewFeedbackRepo(db *gorm.DB) *FeedbackRepo { return &FeedbackRepo{db: db} }

var _ domain.FeedbackRepository = (*FeedbackRepo)(nil)

func (r *FeedbackRepo) Create(ctx context.Context, f *domain.Feedback) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *FeedbackRepo) FindByID(ctx context.Context, id uint) (*domain.Feedback, error) {
	var f domain.Feedback
	err := r.db.WithContext(ctx).First(&f, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FeedbackRepo) List(ctx context.Context) ([]domain.Feedback, error) {
	out := make([]domain.Feedback, 0)
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&out).Error
	return out, err
}

func (r *FeedbackRepo) Update(ctx context.Context, id uint, fields map[string]any) (bool, error) {
	if len(fields) == 0 {
		return r.exists(ctx, id)
	}
	res := r.db.WithContext(ctx).Model(&domain.Feedback{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	return r.exists(ctx, id)
}

func (r *FeedbackRepo) exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Feedback{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *FeedbackRepo) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Feedback{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
