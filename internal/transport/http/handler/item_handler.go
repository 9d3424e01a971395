package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lostfound-api/internal/domain"
	"lostfound-api/internal/service"
	"lostfound-api/internal/transport/http/ez"
)

const itemNotFound = "Item not found"

type ItemModule struct{ svc *service.ItemService }

func NewItemModule(svc *service.ItemService) *ItemModule { return &ItemModule{svc: svc} }

func (m *ItemModule) MountAPI(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[struct{}, []domain.ItemView]{
		Method: http.MethodGet,
		Path:   "/items",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ domain.Principal, _ *struct{}) ([]domain.ItemView, error) {
			return m.svc.List(c.Request.Context())
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *domain.ItemView]{
		Method: http.MethodGet,
		Path:   "/items/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ domain.Principal, _ *struct{}) (*domain.ItemView, error) {
			id, err := ez.ParamID(c, itemNotFound)
			if err != nil {
				return nil, err
			}
			return m.svc.Show(c.Request.Context(), id)
		},
	})

	ez.RegisterAction(e, ez.Action[service.CreateItemInput, *domain.ItemView]{
		Method: http.MethodPost,
		Path:   "/items",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Auth:   true,
		Handler: func(c *gin.Context, p domain.Principal, in *service.CreateItemInput) (*domain.ItemView, error) {
			return m.svc.Create(c.Request.Context(), p, *in)
		},
	})

	update := func(c *gin.Context, p domain.Principal, in *service.ItemPatch) (*domain.ItemView, error) {
		id, err := ez.ParamID(c, itemNotFound)
		if err != nil {
			return nil, err
		}
		return m.svc.Update(c.Request.Context(), p, id, *in)
	}
	for _, method := range []string{http.MethodPatch, http.MethodPut} {
		ez.RegisterAction(e, ez.Action[service.ItemPatch, *domain.ItemView]{
			Method:  method,
			Path:    "/items/:id",
			Binder:  ez.BindJSON,
			Auth:    true,
			Handler: update,
		})
	}

	ez.RegisterAction(e, ez.Action[struct{}, message]{
		Method: http.MethodDelete,
		Path:   "/items/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, p domain.Principal, _ *struct{}) (message, error) {
			id, err := ez.ParamID(c, itemNotFound)
			if err != nil {
				return message{}, err
			}
			msg, err := m.svc.Destroy(c.Request.Context(), p, id)
			return message{Message: msg}, err
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, message]{
		Method: http.MethodPost,
		Path:   "/items/:id/take",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ domain.Principal, _ *struct{}) (message, error) {
			id, err := ez.ParamID(c, itemNotFound)
			if err != nil {
				return message{}, err
			}
			msg, err := m.svc.Take(c.Request.Context(), id)
			return message{Message: msg}, err
		},
	})
}
