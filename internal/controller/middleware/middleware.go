package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"pageserve/internal/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the request id in and out.
	RequestIDHeader = "X-Request-Id"

	// MaxRequestIDLength bounds client-supplied ids; longer ones are replaced.
	MaxRequestIDLength = 128

	requestIDKey = "request_id"
)

// RequestID tags every request with an id, reusing the caller's when given.
func RequestID() gin.HandlerFunc {
	return requestIDWithGenerator(uuid.NewString)
}

func requestIDWithGenerator(generator func() string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if id == "" || len(id) > MaxRequestIDLength {
			id = generator()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestIDFrom returns the id set by RequestID, or "" outside that chain.
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// BestEffort runs step before the rest of the chain. A panic inside step is
// logged at debug level and dropped; the request always continues.
func BestEffort(l logger.Logger, name string, step gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					l.Debug("middleware step failed", "step", name, "panic", fmt.Sprint(rec))
				}
			}()
			step(c)
		}()
		c.Next()
	}
}

// Observer logs method, full URL and remote address of each request.
func Observer(l logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		url := FullURL(c.Request)
		remote := c.ClientIP()
		l.Info(fmt.Sprintf("%s %s - %s", c.Request.Method, url, remote),
			"method", c.Request.Method,
			"url", url,
			"remote_addr", remote,
			"request_id", RequestIDFrom(c),
		)
	}
}

// FullURL rebuilds the absolute URL the client asked for.
func FullURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

// CORS applies the allowed origins; "*" opens the API to any origin.
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "HEAD", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			break
		}
	}
	if !cfg.AllowAllOrigins {
		cfg.AllowOrigins = origins
	}

	return cors.New(cfg)
}
