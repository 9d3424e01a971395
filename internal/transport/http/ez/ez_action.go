package ez

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"lostfound-api/internal/domain"
	mdw "lostfound-api/internal/transport/http/middleware"
	resp "lostfound-api/internal/transport/http/response"
)

// EZ 在一个路由分组上注册动作；authn 为登录校验中间件，
// Auth=true 的动作会先经过它。
type EZ struct {
	g     *gin.RouterGroup
	authn gin.HandlerFunc
}

func New(g *gin.RouterGroup, authn gin.HandlerFunc) EZ { return EZ{g: g, authn: authn} }

// Group 返回挂在子路径上的 EZ，沿用同一个 authn
func (e EZ) Group(path string, handlers ...gin.HandlerFunc) EZ {
	return EZ{g: e.g.Group(path, handlers...), authn: e.authn}
}

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string        // GET | POST | PUT | PATCH | DELETE
	Path    string        // 例："/items/:id/take"
	Binder  Binder        // 绑定方式
	Status  int           // 成功时的 HTTP 状态码，默认 200；204 不写 body
	Auth    bool          // 是否要求登录
	Roles   []domain.Role // 限定角色（可选，隐含 Auth）
	Handler func(c *gin.Context, p domain.Principal, in *I) (O, error)
}

// RegisterAction 在当前 EZ 下注册动作接口
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}
	needAuth := a.Auth || len(a.Roles) > 0

	h := func(c *gin.Context) {
		// 1) 角色
		p := mdw.PrincipalFrom(c)
		if needAuth {
			if err := p.Require(a.Roles...); err != nil {
				resp.Fail(c, err)
				return
			}
		}

		// 2) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
			// 空 body 视为 {}
			if errors.Is(bindErr, io.EOF) {
				bindErr = nil
			}
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		default: // BindNone: 不绑定
		}
		if bindErr != nil {
			bindFail(c, bindErr)
			return
		}

		// 3) 执行 + 统一错误映射
		out, err := a.Handler(c, p, &in)
		if err != nil {
			resp.Fail(c, err)
			return
		}
		if status == http.StatusNoContent {
			c.Status(status)
			return
		}
		c.JSON(status, resp.OK(out))
	}

	chain := []gin.HandlerFunc{h}
	if needAuth && e.authn != nil {
		chain = []gin.HandlerFunc{e.authn, h}
	}
	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, chain...)
	case http.MethodPut:
		e.g.PUT(a.Path, chain...)
	case http.MethodPatch:
		e.g.PATCH(a.Path, chain...)
	case http.MethodDelete:
		e.g.DELETE(a.Path, chain...)
	default: // 默认 POST
		e.g.POST(a.Path, chain...)
	}
}

func bindFail(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		resp.Abort(c, resp.CodeRequestTooLarge, "request body too large")
		return
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		field := typeErr.Field
		resp.Fail(c, domain.Invalid(field, fmt.Sprintf("The %s field has an invalid type.", strings.ReplaceAll(field, "_", " "))))
		return
	}
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		resp.Abort(c, resp.CodeBadRequest, "invalid query parameter")
		return
	}
	resp.Abort(c, resp.CodeBadRequest, "malformed request body")
}

// ParamID 解析路径上的 :id；非数字按记录不存在处理
func ParamID(c *gin.Context, notFound string) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, domain.NotFound(notFound)
	}
	return uint(id), nil
}
