package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/heartletter/letter_api/dto"
	"github.com/heartletter/letter_api/shared"
)

type Limiter interface {
	IsAllowed(ctx context.Context, identifier, endpointType string) (bool, *dto.RateLimitInfo, error)
	Message(endpointType string) string
}

// RateLimit limits an endpoint group per client IP. Limiter failures let the
// request through.
func RateLimit(limiter Limiter, endpointType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identifier := ClientIP(c)

		allowed, info, err := limiter.IsAllowed(c.UserContext(), identifier, endpointType)
		if err != nil {
			log.Warn().Err(err).Str("endpoint", endpointType).Str("identifier", identifier).Msg("Rate limit check failed")
			return c.Next()
		}

		addRateLimitHeaders(c, info)

		if !allowed {
			return rateLimitExceeded(c, limiter.Message(endpointType), info)
		}
		return c.Next()
	}
}

func addRateLimitHeaders(c *fiber.Ctx, info *dto.RateLimitInfo) {
	if info == nil {
		return
	}

	if info.Limit > 0 {
		c.Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
	}
	if info.Remaining >= 0 {
		c.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	}
	if !info.ResetTime.IsZero() {
		c.Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
	if info.BlockedUntil != nil {
		if retryAfter := int(time.Until(*info.BlockedUntil).Seconds()); retryAfter > 0 {
			c.Set("Retry-After", strconv.Itoa(retryAfter))
		}
	}
}

func rateLimitExceeded(c *fiber.Ctx, message string, info *dto.RateLimitInfo) error {
	response := map[string]interface{}{
		"error": "Rate limit exceeded",
	}
	if info != nil && info.BlockedUntil != nil {
		response["blocked_until"] = info.BlockedUntil.Unix()
		response["retry_after"] = int(time.Until(*info.BlockedUntil).Seconds())
	}
	return shared.ResponseJSON(c, http.StatusTooManyRequests, message, response)
}

func ClientIP(c *fiber.Ctx) string {
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		if ip := strings.TrimSpace(strings.Split(forwarded, ",")[0]); ip != "" {
			return ip
		}
	}

	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	if cfIP := c.Get("CF-Connecting-IP"); cfIP != "" {
		return cfIP
	}

	ip, _, err := net.SplitHostPort(c.Context().RemoteAddr().String())
	if err != nil {
		return c.IP()
	}
	return ip
}
