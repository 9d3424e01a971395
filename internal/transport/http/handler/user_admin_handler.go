package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lostfound-api/internal/domain"
	"lostfound-api/internal/service"
	"lostfound-api/internal/transport/http/ez"
)

const userNotFound = "User not found"

// UserAdminModule 同时挂在 /api/v1 与管理端 /admin/v1，均要求 admin
type UserAdminModule struct{ svc *service.UserService }

func NewUserAdminModule(svc *service.UserService) *UserAdminModule {
	return &UserAdminModule{svc: svc}
}

func (m *UserAdminModule) Priority() int { return 50 }

func (m *UserAdminModule) MountAPI(e ez.EZ)   { m.mount(e) }
func (m *UserAdminModule) MountAdmin(e ez.EZ) { m.mount(e) }

func (m *UserAdminModule) mount(e ez.EZ) {
	admin := []domain.Role{domain.RoleAdmin}

	ez.RegisterAction(e, ez.Action[service.ListUsersQuery, *service.UserPage]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Roles:  admin,
		Handler: func(c *gin.Context, p domain.Principal, in *service.ListUsersQuery) (*service.UserPage, error) {
			return m.svc.List(c.Request.Context(), p, *in)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/users/:id",
		Binder: ez.BindNone,
		Roles:  admin,
		Handler: func(c *gin.Context, p domain.Principal, _ *struct{}) (*domain.User, error) {
			id, err := ez.ParamID(c, userNotFound)
			if err != nil {
				return nil, err
			}
			return m.svc.Get(c.Request.Context(), p, id)
		},
	})

	type byID func(c *gin.Context, p domain.Principal, id uint) (string, error)
	messageAction := func(method, path string, fn byID) {
		ez.RegisterAction(e, ez.Action[struct{}, message]{
			Method: method,
			Path:   path,
			Binder: ez.BindNone,
			Roles:  admin,
			Handler: func(c *gin.Context, p domain.Principal, _ *struct{}) (message, error) {
				id, err := ez.ParamID(c, userNotFound)
				if err != nil {
					return message{}, err
				}
				msg, err := fn(c, p, id)
				return message{Message: msg}, err
			},
		})
	}
	messageAction(http.MethodDelete, "/users/:id", func(c *gin.Context, p domain.Principal, id uint) (string, error) {
		return m.svc.Delete(c.Request.Context(), p, id)
	})
	messageAction(http.MethodPost, "/users/:id/promote", func(c *gin.Context, p domain.Principal, id uint) (string, error) {
		return m.svc.Promote(c.Request.Context(), p, id)
	})
	messageAction(http.MethodPost, "/users/:id/demote", func(c *gin.Context, p domain.Principal, id uint) (string, error) {
		return m.svc.Demote(c.Request.Context(), p, id)
	})
}
