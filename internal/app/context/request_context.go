package context

import (
	"context"
	"fmt"
	"sync"
)

// RequestContext holds memoized lookups and the compensable actions
// performed during one use case. It is not shared between requests.
type RequestContext struct {
	ctx   context.Context
	cache sync.Map

	mu        sync.Mutex
	performed []Action
	completed bool
}

// New creates a RequestContext whose lookups run under ctx.
func New(ctx context.Context) *RequestContext {
	return &RequestContext{ctx: ctx}
}

// Get returns the value memoized under key, calling fetch on the first
// request. Failed fetches are not memoized, so a later Get retries.
func Get[T any](rc *RequestContext, key string, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	if cached, ok := rc.cache.Load(key); ok {
		return typed[T](key, cached)
	}

	value, err := fetch(rc.ctx)
	if err != nil {
		return zero, err
	}

	actual, _ := rc.cache.LoadOrStore(key, value)
	return typed[T](key, actual)
}

func typed[T any](key string, value any) (T, error) {
	v, ok := value.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("memoized %q holds %T", key, value)
	}
	return v, nil
}
