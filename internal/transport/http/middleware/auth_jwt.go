package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"lostfound-api/internal/domain"
	resp "lostfound-api/internal/transport/http/response"
)

const keyPrincipal = "principal"

// Authenticator 把 bearer token 解析成调用方
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (domain.Principal, error)
}

// AuthJWT 要求合法 token；roles 非空时再过角色闸门
func AuthJWT(a Authenticator, roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := a.Authenticate(c.Request.Context(), BearerToken(c))
		if err != nil {
			resp.Fail(c, err)
			return
		}
		if err := p.Require(roles...); err != nil {
			resp.Fail(c, err)
			return
		}
		SetPrincipal(c, p)
		c.Next()
	}
}

// BearerToken 取 Authorization: Bearer xxx；没有则返回空串
func BearerToken(c *gin.Context) string {
	ah := c.GetHeader("Authorization")
	if len(ah) < 7 || !strings.EqualFold(ah[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(ah[7:])
}

func SetPrincipal(c *gin.Context, p domain.Principal) { c.Set(keyPrincipal, p) }

// PrincipalFrom 未登录时返回零值
func PrincipalFrom(c *gin.Context) domain.Principal {
	if v, ok := c.Get(keyPrincipal); ok {
		if p, ok := v.(domain.Principal); ok {
			return p
		}
	}
	return domain.Principal{}
}
