package dto

import "time"

type RateLimitInfo struct {
	Allowed      bool       `json:"allowed"`
	Limit        int        `json:"limit"`
	Remaining    int        `json:"remaining"`
	ResetTime    time.Time  `json:"resetTime"`
	BlockedUntil *time.Time `json:"blockedUntil,omitempty"`
}
