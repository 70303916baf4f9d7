package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/express-plugin/pkg/errors"
	mwopts "github.com/kart-io/express-plugin/pkg/options/middleware"
	"github.com/kart-io/express-plugin/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, app *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestPluginInstallsHandler(t *testing.T) {
	app := gin.New()
	var hit bool
	p := New("mark", func(c *gin.Context) {
		hit = true
		c.Next()
	})
	assert.Equal(t, "mark", p.Name())
	require.NoError(t, p.InitExpress(context.Background(), app, func() {}))
	app.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, hit)
}

func TestRecovery(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("GO_ENV", "")

	tests := []struct {
		name      string
		env       string
		withStack bool
		wantStack bool
	}{
		{name: "default hides stack"},
		{name: "stack enabled", withStack: true, wantStack: true},
		{name: "production hides stack", env: "production", withStack: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ENV", tt.env)

			var recovered any
			app := gin.New()
			app.Use(Recovery(mwopts.RecoveryOptions{EnableStackTrace: tt.withStack},
				func(_ *gin.Context, err any, _ []byte) { recovered = err }))
			app.GET("/panic", func(*gin.Context) { panic("boom") })

			w := serve(t, app, httptest.NewRequest(http.MethodGet, "/panic", nil))
			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Equal(t, "boom", recovered)

			resp := decode(t, w)
			assert.Equal(t, errors.ErrPanic.Code, resp.Code)
			if tt.wantStack {
				assert.Contains(t, resp.Message, "panic: boom")
			} else {
				assert.Equal(t, errors.ErrPanic.Message, resp.Message)
			}
		})
	}
}

func TestRequestIDGenerated(t *testing.T) {
	app := gin.New()
	app.Use(RequestID(*mwopts.NewRequestIDOptions()))

	var fromCtx, fromGin string
	app.GET("/", func(c *gin.Context) {
		fromCtx = GetRequestID(c.Request.Context())
		fromGin = c.GetString(response.RequestIDKey)
	})

	w := serve(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	id := w.Header().Get("X-Request-ID")
	assert.Len(t, id, 26)
	assert.Equal(t, id, fromCtx)
	assert.Equal(t, id, fromGin)

	w2 := serve(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEqual(t, id, w2.Header().Get("X-Request-ID"))
}

func TestRequestIDPropagated(t *testing.T) {
	app := gin.New()
	app.Use(RequestID(mwopts.RequestIDOptions{Header: "X-Trace"}))
	app.GET("/", func(*gin.Context) {})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Trace", "abc")
	w := serve(t, app, req)
	assert.Equal(t, "abc", w.Header().Get("X-Trace"))
}

func TestGetRequestIDMissing(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
	assert.Equal(t, "x", GetRequestID(WithRequestID(context.Background(), "x")))
}

func TestLoggerPassesThrough(t *testing.T) {
	app := gin.New()
	app.Use(Logger(mwopts.LoggerOptions{SkipPaths: []string{"/skip"}}))
	app.GET("/skip", func(c *gin.Context) { c.Status(http.StatusAccepted) })
	app.GET("/log", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	assert.Equal(t, http.StatusAccepted, serve(t, app, httptest.NewRequest(http.MethodGet, "/skip", nil)).Code)
	assert.Equal(t, http.StatusTeapot, serve(t, app, httptest.NewRequest(http.MethodGet, "/log", nil)).Code)
}

func TestVersion(t *testing.T) {
	tests := []struct {
		name   string
		opts   mwopts.VersionOptions
		path   string
		status int
	}{
		{name: "default path", opts: *mwopts.NewVersionOptions(), path: "/version", status: http.StatusOK},
		{name: "custom path", opts: mwopts.VersionOptions{Enabled: true, Path: "/v"}, path: "/v", status: http.StatusOK},
		{name: "disabled", opts: mwopts.VersionOptions{Path: "/version"}, path: "/version", status: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := gin.New()
			p := NewVersion(&tt.opts)
			assert.Equal(t, VersionName, p.Name())
			require.NoError(t, p.InitExpress(context.Background(), app, func() {}))

			w := serve(t, app, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				var resp VersionResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, version.Get().GitVersion, resp.GitVersion)
			}
		})
	}
}

func TestVersionHideDetails(t *testing.T) {
	app := gin.New()
	p := NewVersion(&mwopts.VersionOptions{Enabled: true, Path: "/version", HideDetails: true})
	require.NoError(t, p.InitExpress(context.Background(), app, func() {}))

	w := serve(t, app, httptest.NewRequest(http.MethodGet, "/version", nil))
	var resp VersionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.GoVersion)
	assert.Empty(t, resp.GitCommit)
}
