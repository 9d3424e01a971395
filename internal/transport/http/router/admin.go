package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lostfound-api/internal/domain"
	"lostfound-api/internal/transport/http/ez"
	mdw "lostfound-api/internal/transport/http/middleware"
)

// NewAdminEngine 管理端：/admin/v1 整组要求 admin 角色
func NewAdminEngine(l *zap.Logger, authn mdw.Authenticator, reg *Registry, lim Limits) *gin.Engine {
	r := newEngine(l, lim)

	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(authn, domain.RoleAdmin))
	reg.MountAdmin(ez.New(admin, nil))

	return r
}
