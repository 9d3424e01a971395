package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"lostfound-api/internal/domain"
	mdw "lostfound-api/internal/transport/http/middleware"
)

func init() { gin.SetMode(gin.TestMode) }

type fakeAuth map[string]domain.Principal

func (f fakeAuth) Authenticate(_ context.Context, raw string) (domain.Principal, error) {
	if p, ok := f[raw]; ok {
		return p, nil
	}
	return domain.Principal{}, domain.Unauthenticated("invalid token")
}

func serve(r *gin.Engine, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthJWT(t *testing.T) {
	auth := fakeAuth{
		"user":  {UserID: 1, Role: domain.RoleUser},
		"admin": {UserID: 2, Role: domain.RoleAdmin},
	}
	r := gin.New()
	whoami := func(c *gin.Context) { c.String(http.StatusOK, "%d", mdw.PrincipalFrom(c).UserID) }
	r.GET("/me", mdw.AuthJWT(auth), whoami)
	r.GET("/admin", mdw.AuthJWT(auth, domain.RoleAdmin), whoami)

	cases := []struct {
		path, header string
		want         int
		body         string
	}{
		{"/me", "", http.StatusUnauthorized, ""},
		{"/me", "Bearer nope", http.StatusUnauthorized, ""},
		{"/me", "Basic user", http.StatusUnauthorized, ""},
		{"/me", "Bearer user", http.StatusOK, "1"},
		{"/me", "bearer user", http.StatusOK, "1"},
		{"/admin", "Bearer user", http.StatusForbidden, ""},
		{"/admin", "Bearer admin", http.StatusOK, "2"},
	}
	for _, tc := range cases {
		w := serve(r, http.MethodGet, tc.path, map[string]string{"Authorization": tc.header})
		if w.Code != tc.want {
			t.Fatalf("%s %q = %d, want %d", tc.path, tc.header, w.Code, tc.want)
		}
		if tc.body != "" && w.Body.String() != tc.body {
			t.Fatalf("%s %q body = %q", tc.path, tc.header, w.Body.String())
		}
	}
}

func TestPrincipalFromAnonymous(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if p := mdw.PrincipalFrom(c); p.Authenticated() {
		t.Fatalf("PrincipalFrom(empty) = %+v", p)
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(mdw.RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(mdw.KeyRequestID)) })

	w := serve(r, http.MethodGet, "/", map[string]string{mdw.KeyRequestID: "abc"})
	if w.Header().Get(mdw.KeyRequestID) != "abc" || w.Body.String() != "abc" {
		t.Fatalf("propagated rid = %q / %q", w.Header().Get(mdw.KeyRequestID), w.Body.String())
	}
	for _, in := range []string{"", "has space", "line\nbreak", strings.Repeat("x", 129)} {
		w = serve(r, http.MethodGet, "/", map[string]string{mdw.KeyRequestID: in})
		if rid := w.Header().Get(mdw.KeyRequestID); len(rid) != 36 || w.Body.String() != rid {
			t.Fatalf("rid for %q = %q / %q", in, rid, w.Body.String())
		}
	}
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(mdw.RateLimit(0.001, 2))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		if w := serve(r, http.MethodGet, "/", nil); w.Code != http.StatusOK {
			t.Fatalf("request %d = %d", i, w.Code)
		}
	}
	if w := serve(r, http.MethodGet, "/", nil); w.Code != http.StatusTooManyRequests {
		t.Fatalf("over burst = %d", w.Code)
	}
}

func TestRateLimitPerIP(t *testing.T) {
	r := gin.New()
	r.Use(mdw.RateLimitPerIP(0.001, 1, time.Minute))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	if send("10.0.0.1") != http.StatusOK || send("10.0.0.2") != http.StatusOK {
		t.Fatal("first request per ip must pass")
	}
	if code := send("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("second request = %d", code)
	}
}

func TestTimeout(t *testing.T) {
	var errs int
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Next()
		errs = len(c.Errors)
	}, mdw.Timeout(10*time.Millisecond))
	r.GET("/slow", func(c *gin.Context) { <-c.Request.Context().Done() })

	if w := serve(r, http.MethodGet, "/slow", nil); w.Code != http.StatusGatewayTimeout {
		t.Fatalf("slow = %d", w.Code)
	}
	if errs != 1 {
		t.Fatalf("timeout errors recorded = %d", errs)
	}
}

func TestTimeoutDisabled(t *testing.T) {
	r := gin.New()
	r.Use(mdw.Timeout(0))
	r.GET("/", func(c *gin.Context) {
		if _, ok := c.Request.Context().Deadline(); ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})
	if w := serve(r, http.MethodGet, "/", nil); w.Code != http.StatusOK {
		t.Fatalf("Timeout(0) = %d", w.Code)
	}
}

func TestConcurrencyLimitRejectsWhenFull(t *testing.T) {
	r := gin.New()
	r.Use(mdw.ConcurrencyLimit(1, 20*time.Millisecond))
	entered, release := make(chan struct{}), make(chan struct{})
	r.GET("/hold", func(c *gin.Context) {
		close(entered)
		<-release
		c.Status(http.StatusOK)
	})
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	done := make(chan int)
	go func() { done <- serve(r, http.MethodGet, "/hold", nil).Code }()
	<-entered

	w := serve(r, http.MethodGet, "/", nil)
	if w.Code != http.StatusServiceUnavailable || w.Header().Get("Retry-After") == "" {
		t.Fatalf("while full = %d %v", w.Code, w.Header())
	}
	close(release)
	if code := <-done; code != http.StatusOK {
		t.Fatalf("held request = %d", code)
	}
	if w := serve(r, http.MethodGet, "/", nil); w.Code != http.StatusOK {
		t.Fatalf("after release = %d", w.Code)
	}
}

func TestConcurrencyLimitPasses(t *testing.T) {
	r := gin.New()
	r.Use(mdw.ConcurrencyLimit(1, 0))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 3; i++ {
		if w := serve(r, http.MethodGet, "/", nil); w.Code != http.StatusOK {
			t.Fatalf("sequential request %d = %d", i, w.Code)
		}
	}
}

func TestAccessLogMasksSecrets(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(mdw.RequestID(), mdw.AccessLog(zap.New(core)))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	serve(r, http.MethodGet, "/x?token=abc&q=ok", nil)
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	q, _ := ctx["query"].(map[string][]string)
	if q["token"][0] != "****" || q["q"][0] != "ok" {
		t.Fatalf("query = %v", ctx["query"])
	}
	if ctx["status"] != int64(http.StatusNoContent) || !strings.HasPrefix(ctx["path"].(string), "/x") {
		t.Fatalf("entry = %v", ctx)
	}
}
