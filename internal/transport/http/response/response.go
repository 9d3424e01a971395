package response

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"lostfound-api/internal/domain"
)

type Resp struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

// New 构造函数（保证 data 不为 null）
func New(code int, msg string, data interface{}) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

func OK(data interface{}) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

// Error 失败响应（可以传自定义 msg 覆盖默认）；data.message 与 msg 相同，
// 客户端只读 data 也能拿到错误信息
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, gin.H{"message": msg})
}

// Abort 以 code 作为 HTTP 状态码结束请求
func Abort(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, Error(code, msg))
}

// Fail 把 service 层错误映射成响应；唯一的映射点
func Fail(c *gin.Context, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		de = domain.Internal("", err).(*domain.Error)
	}
	if de.Kind == domain.KindInternal {
		_ = c.Error(err)
		// 下游因请求截止时间失败，按超时回 504
		if errors.Is(err, context.DeadlineExceeded) {
			Abort(c, CodeTimeout, MsgTimeout)
			return
		}
		Abort(c, de.Code, CodeMsgMap[CodeServerError])
		return
	}
	body := Error(de.Code, de.Msg)
	data := body.Data.(gin.H)
	if de.Kind == domain.KindAuth {
		data["error"] = de.Msg
	}
	if len(de.Fields) > 0 {
		data["errors"] = de.Fields
	}
	c.AbortWithStatusJSON(de.Code, body)
}
