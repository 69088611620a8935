package routes

import (
	"io/fs"
	"net/http"
	"strings"

	"pageserve/internal/controller/handler"

	"github.com/gin-gonic/gin"
)

// pageMethods are answered on every page route.
var pageMethods = []string{http.MethodGet, http.MethodHead, http.MethodOptions}

// RegisterRoutes registers the page, health and asset routes. Anything else
// falls through to the handler's NotFound.
func RegisterRoutes(router *gin.Engine, handler *handler.Handler, static fs.FS) {
	page(router, "/", handler.Index)
	page(router, "/interactive", handler.Interactive)
	page(router, "/health", handler.Health)

	if static != nil {
		router.StaticFS("/static", http.FS(static))
	}

	router.NoRoute(handler.NotFound)
}

// page serves GET and HEAD with h and answers OPTIONS with the allowed
// methods.
func page(router *gin.Engine, path string, h gin.HandlerFunc) {
	router.GET(path, h)
	router.HEAD(path, h)
	router.OPTIONS(path, allow)
}

func allow(c *gin.Context) {
	c.Header("Allow", strings.Join(pageMethods, ", "))
	c.Status(http.StatusOK)
}
