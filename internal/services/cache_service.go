package services

import (
	"context"
	"time"
)

type CacheService interface {
	// Basic cache operations
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)

	// SetNX is the primitive the per-booking reconciliation lock is built on.
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)

	// Health
	Ping(ctx context.Context) error
}
