package gin

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/chainkit/chainkit/chain"
	"github.com/chainkit/chainkit/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMiddlewareShortCircuit(t *testing.T) {
	ch := chain.New().UseFunc(func(c *chain.Context, next chain.Next) (chain.Result, error) {
		c.Response().SetStatus(401)
		c.Response().JSON(map[string]string{"error": "unauthorized"})
		return chain.Done(), nil
	})

	handlerRan := false
	r := gin.New()
	r.Use(Middleware(ch))
	r.GET("/secret", func(c *gin.Context) {
		handlerRan = true
		c.String(200, "secret")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/secret", nil)
	r.ServeHTTP(w, req)

	if handlerRan {
		t.Error("route handler ran after short-circuit")
	}
	if w.Code != 401 {
		t.Errorf("expected status 401, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "unauthorized") {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestMiddlewarePassThrough(t *testing.T) {
	ch := chain.New().UseFunc(func(c *chain.Context, next chain.Next) (chain.Result, error) {
		c.Response().SetHeader("X-Tagged", "yes")
		return chain.Continue(), next()
	})

	r := gin.New()
	r.Use(Middleware(ch))
	r.GET("/", func(c *gin.Context) {
		c.String(200, "handled")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	r.ServeHTTP(w, req)

	if w.Code != 200 {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "handled" {
		t.Errorf("expected route handler body, got %q", w.Body.String())
	}
}

func TestMiddlewareContentWithoutDone(t *testing.T) {
	ch := chain.New().UseFunc(func(c *chain.Context, next chain.Next) (chain.Result, error) {
		c.Response().SetStatus(418)
		c.Response().Text("teapot")
		return chain.Continue(), next()
	})

	handlerRan := false
	r := gin.New()
	r.Use(Middleware(ch))
	r.GET("/", func(c *gin.Context) {
		handlerRan = true
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	r.ServeHTTP(w, req)

	if handlerRan {
		t.Error("route handler ran after chain produced content")
	}
	if w.Code != 418 {
		t.Errorf("expected status 418, got %d", w.Code)
	}
	if w.Body.String() != "teapot" {
		t.Errorf("expected chain body, got %q", w.Body.String())
	}
}

func TestMiddlewarePassThroughDisabled(t *testing.T) {
	ch := chain.New().UseFunc(func(c *chain.Context, next chain.Next) (chain.Result, error) {
		return chain.Continue(), next()
	})

	handlerRan := false
	r := gin.New()
	r.Use(Middleware(ch, WithPassThrough(false)))
	r.GET("/", func(c *gin.Context) {
		handlerRan = true
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	r.ServeHTTP(w, req)

	if handlerRan {
		t.Error("route handler ran with pass-through disabled")
	}
	if w.Code != 200 {
		t.Errorf("expected default status 200, got %d", w.Code)
	}
}

func TestMiddlewareRequestTranslation(t *testing.T) {
	var gotMethod, gotHeader, gotBody string
	ch := chain.New().UseFunc(func(c *chain.Context, next chain.Next) (chain.Result, error) {
		gotMethod = c.Request().Method()
		gotHeader = c.Request().Header().Get("X-Probe")
		gotBody, _ = c.Request().Text()
		c.Response().SetStatus(204)
		return chain.Done(), nil
	})

	r := gin.New()
	r.Use(Middleware(ch))
	r.POST("/submit", func(c *gin.Context) {})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/submit", strings.NewReader("payload"))
	req.Header.Set("X-Probe", "value")
	r.ServeHTTP(w, req)

	if gotMethod != "POST" {
		t.Errorf("expected method POST, got %q", gotMethod)
	}
	if gotHeader != "value" {
		t.Errorf("expected header value, got %q", gotHeader)
	}
	if gotBody != "payload" {
		t.Errorf("expected body payload, got %q", gotBody)
	}
}

func TestMiddlewareErrorHandler(t *testing.T) {
	boom := errors.New("boom")
	ch := chain.New().UseFunc(func(c *chain.Context, next chain.Next) (chain.Result, error) {
		return chain.Continue(), boom
	})

	var gotErr error
	r := gin.New()
	r.Use(Middleware(ch, WithErrorHandler(func(c *gin.Context, err error) {
		gotErr = err
		c.AbortWithStatus(502)
	})))
	r.GET("/", func(c *gin.Context) {})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	r.ServeHTTP(w, req)

	if !errors.Is(gotErr, boom) {
		t.Errorf("expected error to reach handler, got %v", gotErr)
	}
	if w.Code != 502 {
		t.Errorf("expected status 502, got %d", w.Code)
	}
}

func TestMiddlewareDefaultErrorHandler(t *testing.T) {
	ch := chain.New().UseFunc(func(c *chain.Context, next chain.Next) (chain.Result, error) {
		return chain.Continue(), errors.New("boom")
	})

	r := gin.New()
	r.Use(Middleware(ch))
	r.GET("/", func(c *gin.Context) {
		t.Error("route handler ran after execution error")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	r.ServeHTTP(w, req)

	if w.Code != 500 {
		t.Errorf("expected status 500, got %d", w.Code)
	}
}

func TestMiddlewarePassThroughBody(t *testing.T) {
	ch := chain.New().UseFunc(func(c *chain.Context, next chain.Next) (chain.Result, error) {
		if _, err := c.Request().Text(); err != nil {
			return chain.Result{}, err
		}
		return chain.Continue(), next()
	})

	var got string
	r := gin.New()
	r.Use(Middleware(ch))
	r.POST("/submit", func(c *gin.Context) {
		b, err := io.ReadAll(c.Request.Body)
		if err != nil {
			t.Fatalf("native read: %v", err)
		}
		got = string(b)
		c.Status(200)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/submit", strings.NewReader("payload"))
	r.ServeHTTP(w, req)

	if got != "payload" {
		t.Errorf("route handler saw body %q, want payload", got)
	}
}

func TestMiddlewarePassThroughHeaders(t *testing.T) {
	ch := chain.New(middleware.CORS(middleware.DefaultCORSConfig())).
		UseFunc(func(c *chain.Context, next chain.Next) (chain.Result, error) {
			c.Response().SetHeader("X-Trace", "abc123")
			return chain.Continue(), next()
		})

	r := gin.New()
	r.Use(Middleware(ch))
	r.GET("/", func(c *gin.Context) {
		c.String(200, "handled")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://example.com")
	r.ServeHTTP(w, req)

	if w.Body.String() != "handled" {
		t.Errorf("expected route handler body, got %q", w.Body.String())
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	if got := w.Header().Get("X-Trace"); got != "abc123" {
		t.Errorf("X-Trace = %q, want abc123", got)
	}
}
