package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"lostfound-api/internal/domain"
)

type CreateFeedbackInput struct {
	Name    *string `json:"name" validate:"omitempty,max=255"`
	Message string  `json:"message" validate:"required"`
	Rating  *int    `json:"rating" validate:"required,min=1,max=5"`
}

// FeedbackPatch 只允许改 message 和 rating
type FeedbackPatch struct {
	Message *string `json:"message"`
	Rating  *int    `json:"rating" validate:"omitnil,min=1,max=5"`
}

type FeedbackService struct {
	feedbacks domain.FeedbackRepository
	log       *zap.Logger
}

func NewFeedbackService(r domain.FeedbackRepository, l *zap.Logger) *FeedbackService {
	if l == nil {
		l = zap.NewNop()
	}
	return &FeedbackService{feedbacks: r, log: l}
}

func (s *FeedbackService) List(ctx context.Context) ([]domain.Feedback, error) {
	rows, err := s.feedbacks.List(ctx)
	if err != nil {
		return nil, domain.Internal("list feedback", err)
	}
	return rows, nil
}

func (s *FeedbackService) Create(ctx context.Context, in CreateFeedbackInput) (*domain.Feedback, error) {
	in.Name = nullable(in.Name)
	in.Message = strings.TrimSpace(in.Message)
	fe := fieldErrors{}
	if err := fe.checkStruct(in); err != nil {
		return nil, err
	}
	if err := fe.err(); err != nil {
		return nil, err
	}
	f := &domain.Feedback{Name: in.Name, Message: in.Message, Rating: *in.Rating}
	if err := s.feedbacks.Create(ctx, f); err != nil {
		return nil, domain.Internal("create feedback", err)
	}
	feedbackRatings.Observe(float64(f.Rating))
	return f, nil
}

func (s *FeedbackService) Show(ctx context.Context, id uint) (*domain.Feedback, error) {
	f, err := s.feedbacks.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Internal("lookup feedback", err)
	}
	if f == nil {
		return nil, domain.NotFound("Feedback not found")
	}
	return f, nil
}

func (s *FeedbackService) Update(ctx context.Context, id uint, in FeedbackPatch) (*domain.Feedback, error) {
	fe := fieldErrors{}
	// 出现即按创建规则校验：空串与缺省一样视为未填
	if in.Message != nil && strings.TrimSpace(*in.Message) == "" {
		fe.add("message", "The message field is required.")
	}
	if err := fe.checkStruct(in); err != nil {
		return nil, err
	}
	if err := fe.err(); err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if in.Message != nil {
		fields["message"] = strings.TrimSpace(*in.Message)
	}
	if in.Rating != nil {
		fields["rating"] = *in.Rating
	}
	ok, err := s.feedbacks.Update(ctx, id, fields)
	if err != nil {
		return nil, domain.Internal("update feedback", err)
	}
	if !ok {
		return nil, domain.NotFound("Feedback not found")
	}
	return s.Show(ctx, id)
}

func (s *FeedbackService) Destroy(ctx context.Context, id uint) error {
	ok, err := s.feedbacks.Delete(ctx, id)
	if err != nil {
		return domain.Internal("delete feedback", err)
	}
	if !ok {
		return domain.NotFound("Feedback not found")
	}
	return nil
}
