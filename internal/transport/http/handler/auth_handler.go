package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lostfound-api/internal/domain"
	"lostfound-api/internal/service"
	"lostfound-api/internal/transport/http/ez"
	mdw "lostfound-api/internal/transport/http/middleware"
)

type message struct {
	Message string `json:"message"`
}

// AuthModule 注册、登录、token 续期与个人信息
type AuthModule struct{ svc *service.AuthService }

func NewAuthModule(svc *service.AuthService) *AuthModule { return &AuthModule{svc: svc} }

func (m *AuthModule) Priority() int { return 10 }

func (m *AuthModule) MountAPI(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[service.RegisterInput, *service.AuthResult]{
		Method: http.MethodPost,
		Path:   "/register",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, _ domain.Principal, in *service.RegisterInput) (*service.AuthResult, error) {
			return m.svc.Register(c.Request.Context(), *in)
		},
	})

	ez.RegisterAction(e, ez.Action[service.LoginInput, *service.AuthResult]{
		Method: http.MethodPost,
		Path:   "/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, _ domain.Principal, in *service.LoginInput) (*service.AuthResult, error) {
			return m.svc.Login(c.Request.Context(), *in)
		},
	})

	// 过期 token 也能续期，所以不走 authn 中间件
	ez.RegisterAction(e, ez.Action[struct{}, *service.AuthResult]{
		Method: http.MethodPost,
		Path:   "/refresh",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ domain.Principal, _ *struct{}) (*service.AuthResult, error) {
			return m.svc.Refresh(c.Request.Context(), mdw.BearerToken(c))
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, message]{
		Method: http.MethodPost,
		Path:   "/logout",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, p domain.Principal, _ *struct{}) (message, error) {
			if err := m.svc.Logout(c.Request.Context(), p); err != nil {
				return message{}, err
			}
			return message{Message: "Successfully logged out"}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[service.ChangePasswordInput, message]{
		Method: http.MethodPost,
		Path:   "/changePassword",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, p domain.Principal, in *service.ChangePasswordInput) (message, error) {
			msg, err := m.svc.ChangePassword(c.Request.Context(), p, *in)
			return message{Message: msg}, err
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, p domain.Principal, _ *struct{}) (*domain.User, error) {
			return m.svc.Profile(c.Request.Context(), p)
		},
	})
}
