package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))

	group := NewDomainGroup("finance", "/finance")
	group.GET("/expenses", func(c *gin.Context) { c.String(http.StatusOK, "list") })
	group.POST("/expenses", func(c *gin.Context) { c.String(http.StatusCreated, "create") })
	r.Register(group).Setup()

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v2/finance/expenses").Code)
	assert.Equal(t, http.StatusCreated, serve(engine, http.MethodPost, "/api/v2/finance/expenses").Code)
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/api/v1/finance/expenses").Code)
}

func TestRouterMiddleware(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }
	r := NewRouter(engine, WithMiddleware(deny))
	r.Register(NewDomainGroup("identity", "/identity").GET("/me", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})).Setup()

	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, "/api/v1/identity/me").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health").Code, "routes outside the API prefix are untouched")
}

func TestDomainGroup(t *testing.T) {
	t.Run("creates group with name and prefix", func(t *testing.T) {
		g := NewDomainGroup("finance", "/finance")
		assert.Equal(t, "finance", g.Name())
		assert.Equal(t, "/finance", g.Prefix())
	})

	t.Run("group middleware applies only to its routes", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("finance", "/finance")
		g.GET("/expenses", func(c *gin.Context) { c.Status(http.StatusOK) })
		admin := g.Group("admin", "/expense-categories")
		admin.Use(func(c *gin.Context) { c.AbortWithStatus(http.StatusForbidden) })
		admin.POST("", func(c *gin.Context) { c.Status(http.StatusCreated) })

		g.RegisterRoutes(engine.Group("/api/v1"))

		assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/finance/expenses").Code)
		assert.Equal(t, http.StatusForbidden, serve(engine, http.MethodPost, "/api/v1/finance/expense-categories").Code)
	})
}

func TestRouterSetup_LogsGroups(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	engine := gin.New()
	r := NewRouter(engine, WithLogger(zap.New(core)))

	r.Register(NewDomainGroup("finance", "/finance").GET("/expenses", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})).Setup()

	entries := logs.FilterMessage("Registered route group").All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "finance", fields["group"])
		assert.Equal(t, "/api/v1/finance", fields["prefix"])
	}
}
