package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lostfound-api/internal/domain"
	"lostfound-api/internal/service"
	"lostfound-api/internal/transport/http/ez"
)

const feedbackNotFound = "Feedback not found"

// FeedbackModule 无需登录
type FeedbackModule struct{ svc *service.FeedbackService }

func NewFeedbackModule(svc *service.FeedbackService) *FeedbackModule {
	return &FeedbackModule{svc: svc}
}

func (m *FeedbackModule) MountAPI(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[struct{}, []domain.Feedback]{
		Method: http.MethodGet,
		Path:   "/feedbacks",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ domain.Principal, _ *struct{}) ([]domain.Feedback, error) {
			return m.svc.List(c.Request.Context())
		},
	})

	ez.RegisterAction(e, ez.Action[service.CreateFeedbackInput, *domain.Feedback]{
		Method: http.MethodPost,
		Path:   "/feedbacks",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, _ domain.Principal, in *service.CreateFeedbackInput) (*domain.Feedback, error) {
			return m.svc.Create(c.Request.Context(), *in)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *domain.Feedback]{
		Method: http.MethodGet,
		Path:   "/feedbacks/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ domain.Principal, _ *struct{}) (*domain.Feedback, error) {
			id, err := ez.ParamID(c, feedbackNotFound)
			if err != nil {
				return nil, err
			}
			return m.svc.Show(c.Request.Context(), id)
		},
	})

	update := func(c *gin.Context, _ domain.Principal, in *service.FeedbackPatch) (*domain.Feedback, error) {
		id, err := ez.ParamID(c, feedbackNotFound)
		if err != nil {
			return nil, err
		}
		return m.svc.Update(c.Request.Context(), id, *in)
	}
	for _, method := range []string{http.MethodPatch, http.MethodPut} {
		ez.RegisterAction(e, ez.Action[service.FeedbackPatch, *domain.Feedback]{
			Method:  method,
			Path:    "/feedbacks/:id",
			Binder:  ez.BindJSON,
			Handler: update,
		})
	}

	ez.RegisterAction(e, ez.Action[struct{}, struct{}]{
		Method: http.MethodDelete,
		Path:   "/feedbacks/:id",
		Binder: ez.BindNone,
		Status: http.StatusNoContent,
		Handler: func(c *gin.Context, _ domain.Principal, _ *struct{}) (struct{}, error) {
			id, err := ez.ParamID(c, feedbackNotFound)
			if err != nil {
				return struct{}{}, err
			}
			return struct{}{}, m.svc.Destroy(c.Request.Context(), id)
		},
	})
}
