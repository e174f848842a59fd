package appmax

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/gravadormedico/voicepen-backend/pkg/redis"
)

const pendingMarker = "pending"

// DeliveryGuard remembers recently handled bodies so gateway retries of the
// same delivery get the same answer without touching the database again.
type DeliveryGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	scope string
}

func NewDeliveryGuard(store redis.IdempotencyStore, ttl time.Duration, scope string) (*DeliveryGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	if scope == "" {
		return nil, errors.New("scope is required")
	}
	return &DeliveryGuard{store: store, ttl: ttl, scope: scope}, nil
}

// Digest is the dedupe key for a raw body.
func Digest(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// Claim marks the digest as in flight. It returns the stored result of a
// finished earlier delivery, or "" when this call should process the body.
// A delivery still marked pending is processed again since the first one may
// have died mid-way.
func (g *DeliveryGuard) Claim(ctx context.Context, digest string) (string, error) {
	if digest == "" {
		return "", errors.New("digest is required")
	}
	key := g.store.IdempotencyKey(g.scope, digest)
	set, err := g.store.SetNX(ctx, key, pendingMarker, g.ttl)
	if err != nil {
		return "", fmt.Errorf("set idempotency key: %w", err)
	}
	if set {
		return "", nil
	}
	prior, err := g.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("get idempotency key: %w", err)
	}
	if prior == pendingMarker {
		return "", nil
	}
	return prior, nil
}

// Complete stores the result a retry should be answered with.
func (g *DeliveryGuard) Complete(ctx context.Context, digest, result string) error {
	if digest == "" || result == "" {
		return errors.New("digest and result are required")
	}
	key := g.store.IdempotencyKey(g.scope, digest)
	return g.store.Set(ctx, key, result, g.ttl)
}

// Release forgets the digest so the next retry is processed.
func (g *DeliveryGuard) Release(ctx context.Context, digest string) error {
	if digest == "" {
		return errors.New("digest is required")
	}
	return g.store.Del(ctx, g.store.IdempotencyKey(g.scope, digest))
}
