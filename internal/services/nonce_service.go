package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/prefeitura-rio/app-subscribe/internal/observability"
	"github.com/prefeitura-rio/app-subscribe/internal/redisclient"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Action names nonces are scoped to. A nonce issued for one action
// never verifies for another.
const (
	ActionSignup   = "signup"
	ActionSettings = "settings"
	ActionOptOut   = "opt-out"
)

// NonceService issues and verifies single-use, action-scoped
// anti-forgery tokens backed by Redis.
type NonceService struct {
	redis  *redisclient.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewNonceService creates a nonce service with the given TTL.
func NewNonceService(redis *redisclient.Client, ttl time.Duration) *NonceService {
	return &NonceService{
		redis:  redis,
		ttl:    ttl,
		logger: observability.Logger().Named("nonce"),
	}
}

// Issue creates a fresh nonce for an action.
func (n *NonceService) Issue(ctx context.Context, action string) (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	nonce := hex.EncodeToString(raw)

	if err := n.redis.Set(ctx, nonceKey(action, nonce), "1", n.ttl).Err(); err != nil {
		return "", err
	}
	return nonce, nil
}

// Verify consumes a nonce. It returns true at most once per nonce, and
// only for the action it was issued for. Store errors fail closed.
func (n *NonceService) Verify(ctx context.Context, action, nonce string) bool {
	if nonce == "" {
		return false
	}

	err := n.redis.GetDel(ctx, nonceKey(action, nonce)).Err()
	switch {
	case err == nil:
		observability.NonceVerifications.WithLabelValues(action, "valid").Inc()
		return true
	case err == redis.Nil:
		observability.NonceVerifications.WithLabelValues(action, "invalid").Inc()
		return false
	default:
		n.logger.Warn("nonce verification failed", zap.String("action", action), zap.Error(err))
		observability.NonceVerifications.WithLabelValues(action, "error").Inc()
		return false
	}
}

func nonceKey(action, nonce string) string {
	return "nonce:" + action + ":" + nonce
}
