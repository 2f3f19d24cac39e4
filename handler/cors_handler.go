package handler

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type CorsHandler struct {
	config cors.Config
}

// NewCorsHandler allows any origin with credentials. The request origin is
// echoed back because browsers refuse "*" on credentialed requests.
func NewCorsHandler() *CorsHandler {
	return &CorsHandler{
		config: cors.Config{
			AllowOriginFunc:  func(origin string) bool { return true },
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"*"},
			ExposeHeaders:    []string{"X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		},
	}
}

func (h *CorsHandler) CorsMiddleware() gin.HandlerFunc {
	return cors.New(h.config)
}
