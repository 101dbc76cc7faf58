package services

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"

	"github.com/heartletter/letter_api/dto"
	"github.com/heartletter/letter_api/middleware"
	"github.com/heartletter/letter_api/services/repositories"
)

// Rate limited endpoint groups.
const (
	RateLimitLogin    = "login"
	RateLimitRegister = "register"
	RateLimitLetter   = "letter_generate"
	RateLimitAI       = "ai"
	RateLimitGeneral  = "api_general"
)

type RateLimitService struct {
	appContext.DefaultService

	configs map[string]*RateLimitConfig
	mutex   sync.RWMutex

	store repositories.Store
	now   func() time.Time
}

type RateLimitConfig struct {
	EndpointType string
	MaxRequests  int
	WindowSize   time.Duration
	BlockTime    time.Duration
	Description  string
	IsActive     bool
}

const RATE_LIMIT_SVC = "rate_limit_svc"

func (svc RateLimitService) Id() string {
	return RATE_LIMIT_SVC
}

func (svc *RateLimitService) Configure(ctx *appContext.Context) error {
	svc.now = time.Now
	svc.initDefaultConfigs()
	return svc.DefaultService.Configure(ctx)
}

func (svc *RateLimitService) Start() error {
	svc.store = svc.Service(REDIS_SVC).(*RedisService).Store()
	return nil
}

// NewRateLimitService builds a limiter with the default configuration over
// store.
func NewRateLimitService(store repositories.Store) *RateLimitService {
	svc := &RateLimitService{store: store, now: time.Now}
	svc.initDefaultConfigs()
	return svc
}

// ==================== CONFIGURATION MANAGEMENT ====================

func (svc *RateLimitService) initDefaultConfigs() {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	svc.configs = map[string]*RateLimitConfig{
		RateLimitLogin: {
			EndpointType: RateLimitLogin,
			MaxRequests:  10,
			WindowSize:   15 * time.Minute,
			BlockTime:    30 * time.Minute,
			Description:  "Login attempts rate limit",
			IsActive:     true,
		},
		RateLimitRegister: {
			EndpointType: RateLimitRegister,
			MaxRequests:  5,
			WindowSize:   15 * time.Minute,
			BlockTime:    60 * time.Minute,
			Description:  "Registration rate limit",
			IsActive:     true,
		},
		RateLimitLetter: {
			EndpointType: RateLimitLetter,
			MaxRequests:  envInt("RATE_LIMIT_LETTER_MAX", 10),
			WindowSize:   time.Hour,
			BlockTime:    time.Hour,
			Description:  "Letter generation rate limit",
			IsActive:     true,
		},
		RateLimitAI: {
			EndpointType: RateLimitAI,
			MaxRequests:  envInt("RATE_LIMIT_AI_MAX", 60),
			WindowSize:   10 * time.Minute,
			BlockTime:    10 * time.Minute,
			Description:  "AI helper rate limit",
			IsActive:     true,
		},
		RateLimitGeneral: {
			EndpointType: RateLimitGeneral,
			MaxRequests:  envInt("RATE_LIMIT_GENERAL_MAX", 1000),
			WindowSize:   time.Hour,
			BlockTime:    time.Hour,
			Description:  "General API rate limit per IP",
			IsActive:     true,
		},
	}
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// ==================== CORE RATE LIMITING LOGIC ====================

func rateLimitCounterKey(endpointType, identifier string, bucket int64) string {
	return fmt.Sprintf("rate_limit:%s:%s:%d", endpointType, identifier, bucket)
}

func rateLimitBlockKey(endpointType, identifier string) string {
	return fmt.Sprintf("rate_limit_block:%s:%s", endpointType, identifier)
}

// IsAllowed counts one request in the current fixed window. Going over the
// limit blocks the identifier for the configured block time.
func (svc *RateLimitService) IsAllowed(ctx context.Context, identifier, endpointType string) (bool, *dto.RateLimitInfo, error) {
	svc.mutex.RLock()
	config, exists := svc.configs[endpointType]
	svc.mutex.RUnlock()

	if !exists || !config.IsActive {
		return true, &dto.RateLimitInfo{Allowed: true, Remaining: -1}, nil
	}

	now := svc.now()
	blockKey := rateLimitBlockKey(endpointType, identifier)
	blocked, err := svc.store.Get(ctx, blockKey)
	if err != nil {
		return false, nil, err
	}
	if blocked != "" {
		if until, err := strconv.ParseInt(blocked, 10, 64); err == nil && now.Unix() < until {
			blockedUntil := time.Unix(until, 0)
			return false, &dto.RateLimitInfo{
				Limit:        config.MaxRequests,
				ResetTime:    blockedUntil,
				BlockedUntil: &blockedUntil,
			}, nil
		}
	}

	window := int64(config.WindowSize / time.Second)
	bucket := now.Unix() / window
	resetTime := time.Unix((bucket+1)*window, 0)

	key := rateLimitCounterKey(endpointType, identifier, bucket)
	count, err := svc.store.Increment(ctx, key)
	if err != nil {
		return false, nil, err
	}
	if count == 1 {
		if err := svc.store.Expire(ctx, key, config.WindowSize); err != nil {
			return false, nil, err
		}
	}

	if int(count) > config.MaxRequests {
		blockedUntil := now.Add(config.BlockTime)
		if err := svc.store.Set(ctx, blockKey, strconv.FormatInt(blockedUntil.Unix(), 10)); err != nil {
			return false, nil, err
		}
		if err := svc.store.Expire(ctx, blockKey, config.BlockTime); err != nil {
			return false, nil, err
		}
		return false, &dto.RateLimitInfo{
			Limit:        config.MaxRequests,
			ResetTime:    blockedUntil,
			BlockedUntil: &blockedUntil,
		}, nil
	}

	return true, &dto.RateLimitInfo{
		Allowed:   true,
		Limit:     config.MaxRequests,
		Remaining: config.MaxRequests - int(count),
		ResetTime: resetTime,
	}, nil
}

// ==================== MIDDLEWARE FUNCTIONS ====================

// RateLimit limits an endpoint group per client IP.
func (svc *RateLimitService) RateLimit(endpointType string) fiber.Handler {
	return middleware.RateLimit(svc, endpointType)
}

// IPRateLimit applies general rate limiting by IP address
func (svc *RateLimitService) IPRateLimit() fiber.Handler {
	return middleware.RateLimit(svc, RateLimitGeneral)
}

func (svc *RateLimitService) Message(endpointType string) string {
	messages := map[string]string{
		RateLimitLogin:    "Too many login attempts. Please try again later.",
		RateLimitRegister: "Too many registration attempts. Please try again later.",
		RateLimitLetter:   "Too many letter requests. Please try again later.",
		RateLimitAI:       "Too many AI requests. Please slow down.",
		RateLimitGeneral:  "Too many requests. Please slow down.",
	}

	if message, exists := messages[endpointType]; exists {
		return message
	}
	return "Too many requests. Please try again later."
}
