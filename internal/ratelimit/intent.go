package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"

	"github.com/givebridge/givebridge/internal/config"
)

const keyDonationIntent = "donation:intent:%s"

// DonationIntentLimiter throttles payment intent creation per client
// address. Intent creation opens a payment on the gateway, so an
// unthrottled endpoint would let a script rack up gateway calls.
type DonationIntentLimiter struct {
	enabled bool

	bucket *TokenBucket

	rate  float64
	burst int
}

func NewDonationIntentLimiter(cfg config.Config) (*DonationIntentLimiter, error) {
	if !cfg.RateLimitEnabled {
		return nil, nil
	}

	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if cfg.IntentRatePerSec <= 0 || cfg.IntentRateBurst <= 0 {
		return nil, errors.New("donation intent rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})

	return &DonationIntentLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		rate:    cfg.IntentRatePerSec,
		burst:   cfg.IntentRateBurst,
	}, nil
}

func (l *DonationIntentLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *DonationIntentLimiter) Allow(ctx context.Context, clientKey string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyDonationIntent, strings.TrimSpace(clientKey)), l.rate, l.burst)
}
