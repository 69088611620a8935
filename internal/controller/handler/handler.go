package handler

import (
	"fmt"
	"net/http"
	"time"

	"pageserve/internal/controller/middleware"
	"pageserve/internal/logger"
	"pageserve/internal/view"

	"github.com/gin-gonic/gin"
)

const (
	indexFallback       = "Error loading page"
	interactiveFallback = "Error loading interactive page"
	htmlContentType     = "text/html; charset=utf-8"
)

// HealthStatus is the liveness payload.
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Handler serves the pages and the terminal error responses.
type Handler struct {
	log   logger.Logger
	views view.Renderer
	now   func() time.Time
}

// NewHandler creates a new Handler
func NewHandler(l logger.Logger, views view.Renderer) *Handler {
	return &Handler{
		log:   l,
		views: views,
		now:   time.Now,
	}
}

func (h *Handler) Index(c *gin.Context) {
	h.page(c, view.Index, indexFallback)
}

func (h *Handler) Interactive(c *gin.Context) {
	h.page(c, view.Interactive, interactiveFallback)
}

// page renders a view, answering with a plain-text 500 when rendering fails.
func (h *Handler) page(c *gin.Context, name, fallback string) {
	body, err := h.views.Render(name, nil)
	if err != nil {
		h.log.Error(fmt.Sprintf("Error rendering %s.html: %v", name, err),
			"request_id", middleware.RequestIDFrom(c),
		)
		c.String(http.StatusInternalServerError, fallback)
		return
	}
	c.Data(http.StatusOK, htmlContentType, body)
}

// Health reports liveness only; it checks nothing beyond the process answering.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthStatus{
		Status:    "healthy",
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}

// NotFound answers requests no route matched.
func (h *Handler) NotFound(c *gin.Context) {
	h.log.Warn("Page not found: "+middleware.FullURL(c.Request),
		"request_id", middleware.RequestIDFrom(c),
	)
	h.errorPage(c, http.StatusNotFound)
}

// Recover is the gin recovery callback for panicking handlers.
func (h *Handler) Recover(c *gin.Context, recovered any) {
	h.internalError(c, fmt.Sprint(recovered))
}

// Errors turns errors recorded with c.Error into the 500 view when the
// handler wrote nothing itself.
func (h *Handler) Errors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		h.internalError(c, c.Errors.Last().Error())
	}
}

func (h *Handler) internalError(c *gin.Context, msg string) {
	h.log.Error("Internal server error: "+msg,
		"request_id", middleware.RequestIDFrom(c),
	)
	h.errorPage(c, http.StatusInternalServerError)
}

// errorPage never fails: a broken error view degrades to the status text.
func (h *Handler) errorPage(c *gin.Context, status int) {
	defer c.Abort()

	body, err := h.views.Render(view.StatusView(status), view.NewErrorPage(status))
	if err != nil {
		h.log.Error(fmt.Sprintf("Error rendering %s.html: %v", view.StatusView(status), err),
			"request_id", middleware.RequestIDFrom(c),
		)
		c.String(status, http.StatusText(status))
		return
	}
	c.Data(status, htmlContentType, body)
}
