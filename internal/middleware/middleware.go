package middleware

import (
	appcontext "github.com/silvioheinze/isr-field-sub000/internal/app_context"
	ratelimiter "github.com/silvioheinze/isr-field-sub000/internal/rate_limiter"
)

type Middleware struct {
	rateLimiter *ratelimiter.FixedWindowRateLimiter
	app         *appcontext.Application
}

func NewMiddleware(app *appcontext.Application,
	rateLimiter *ratelimiter.FixedWindowRateLimiter,
) *Middleware {
	return &Middleware{app: app, rateLimiter: rateLimiter}
}
