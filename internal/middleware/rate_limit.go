package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/silvioheinze/isr-field-sub000/internal/util"
)

func (m Middleware) RateLimitMiddleware(ctx *gin.Context) {
	if !m.app.Config.RateLimiter.Enabled {
		ctx.Next()
		return
	}

	allow, retryAfter := m.rateLimiter.Allow(ctx.ClientIP())
	if !allow {
		ctx.Header("Retry-After", fmt.Sprintf("%.0f", retryAfter.Seconds()))
		util.ResponseFailed(ctx, http.StatusTooManyRequests, "Rate limit exceeded, retry later", nil, nil)
		ctx.Abort()
		return
	}

	ctx.Next()
}
