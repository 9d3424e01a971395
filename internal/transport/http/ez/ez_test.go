package ez_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"lostfound-api/internal/domain"
	"lostfound-api/internal/transport/http/ez"
	mdw "lostfound-api/internal/transport/http/middleware"
	resp "lostfound-api/internal/transport/http/response"
)

func init() { gin.SetMode(gin.TestMode) }

type echoIn struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// stubAuth 把 X-User 头当作已登录的 user id
func stubAuth(c *gin.Context) {
	if c.GetHeader("X-User") == "" {
		resp.Fail(c, domain.Unauthenticated("unauthorized"))
		return
	}
	mdw.SetPrincipal(c, domain.Principal{UserID: 7, Role: domain.Role(c.GetHeader("X-Role"))})
	c.Next()
}

func newEngine() *gin.Engine {
	r := gin.New()
	e := ez.New(r.Group("/v1"), stubAuth)

	ez.RegisterAction(e, ez.Action[echoIn, echoIn]{
		Method: http.MethodPost,
		Path:   "/echo",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(_ *gin.Context, _ domain.Principal, in *echoIn) (echoIn, error) {
			return *in, nil
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, uint]{
		Method: http.MethodGet,
		Path:   "/things/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, p domain.Principal, _ *struct{}) (uint, error) {
			id, err := ez.ParamID(c, "Thing not found")
			if err != nil {
				return 0, err
			}
			return id + p.UserID, nil
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, struct{}]{
		Method: http.MethodDelete,
		Path:   "/things/:id",
		Binder: ez.BindNone,
		Status: http.StatusNoContent,
		Roles:  []domain.Role{domain.RoleAdmin},
		Handler: func(*gin.Context, domain.Principal, *struct{}) (struct{}, error) {
			return struct{}{}, nil
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, struct{}]{
		Method: http.MethodGet,
		Path:   "/boom",
		Binder: ez.BindNone,
		Handler: func(*gin.Context, domain.Principal, *struct{}) (struct{}, error) {
			return struct{}{}, errors.New("db exploded")
		},
	})
	return r
}

func call(r *gin.Engine, method, path, body string, header map[string]string) (*httptest.ResponseRecorder, resp.Resp) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out resp.Resp
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestBindJSON(t *testing.T) {
	r := newEngine()

	w, out := call(r, http.MethodPost, "/v1/echo", `{"name":"a","count":2}`, nil)
	if w.Code != http.StatusCreated || out.Code != resp.CodeOK {
		t.Fatalf("echo = %d %+v", w.Code, out)
	}
	if data := out.Data.(map[string]any); data["name"] != "a" || data["count"] != float64(2) {
		t.Fatalf("data = %v", out.Data)
	}

	w, _ = call(r, http.MethodPost, "/v1/echo", "", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("empty body = %d", w.Code)
	}

	w, out = call(r, http.MethodPost, "/v1/echo", `{"count":"many"}`, nil)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "count") {
		t.Fatalf("type error = %d %s", w.Code, w.Body.String())
	}
	if out.Code != http.StatusBadRequest {
		t.Fatalf("envelope code = %d", out.Code)
	}

	w, _ = call(r, http.MethodPost, "/v1/echo", `{`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("syntax error = %d", w.Code)
	}
}

func TestBodyTooLarge(t *testing.T) {
	r := gin.New()
	r.Use(mdw.MaxBodyBytes(8))
	ez.RegisterAction(ez.New(r.Group(""), nil), ez.Action[echoIn, echoIn]{
		Method: http.MethodPost, Path: "/echo", Binder: ez.BindJSON,
		Handler: func(_ *gin.Context, _ domain.Principal, in *echoIn) (echoIn, error) { return *in, nil },
	})
	w, _ := call(r, http.MethodPost, "/echo", `{"name":"much too long for eight bytes"}`, nil)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("large body = %d", w.Code)
	}
}

func TestAuthAndParams(t *testing.T) {
	r := newEngine()

	if w, _ := call(r, http.MethodGet, "/v1/things/3", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous = %d", w.Code)
	}
	w, out := call(r, http.MethodGet, "/v1/things/3", "", map[string]string{"X-User": "1"})
	if w.Code != http.StatusOK || out.Data != float64(10) {
		t.Fatalf("things/3 = %d %+v", w.Code, out)
	}
	w, out = call(r, http.MethodGet, "/v1/things/x", "", map[string]string{"X-User": "1"})
	if w.Code != http.StatusNotFound || out.Msg != "Thing not found" {
		t.Fatalf("things/x = %d %+v", w.Code, out)
	}

	hdr := map[string]string{"X-User": "1", "X-Role": "user"}
	if w, _ := call(r, http.MethodDelete, "/v1/things/3", "", hdr); w.Code != http.StatusForbidden {
		t.Fatalf("delete as user = %d", w.Code)
	}
	hdr["X-Role"] = "admin"
	w, _ = call(r, http.MethodDelete, "/v1/things/3", "", hdr)
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Fatalf("delete as admin = %d %q", w.Code, w.Body.String())
	}
}

func TestInternalErrorHidden(t *testing.T) {
	r := newEngine()
	w, out := call(r, http.MethodGet, "/v1/boom", "", nil)
	if w.Code != http.StatusInternalServerError || strings.Contains(out.Msg, "exploded") {
		t.Fatalf("boom = %d %+v", w.Code, out)
	}
}
