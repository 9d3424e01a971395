package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Loader is the read-through half of Cache.
type Loader interface {
	GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error)
}

type invalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

var nullJSON = []byte("null")

type decodeError struct {
	key string
	err error
}

func (e *decodeError) Error() string { return "cache: decode " + e.key + ": " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

// GetOrLoadJSON caches load's result as JSON under key; a nil result is
// cached as null. An entry that no longer decodes into T is dropped and
// loaded again once.
func GetOrLoadJSON[T any](
	c Loader,
	ctx context.Context,
	key string,
	ttl time.Duration,
	load func(ctx context.Context) (*T, error),
) (*T, error) {
	out, err := getOrLoadJSON(c, ctx, key, ttl, load)
	var de *decodeError
	if !errors.As(err, &de) {
		return out, err
	}
	inv, ok := c.(invalidator)
	if !ok || inv.Invalidate(ctx, key) != nil {
		return load(ctx)
	}
	return getOrLoadJSON(c, ctx, key, ttl, load)
}

func getOrLoadJSON[T any](c Loader, ctx context.Context, key string, ttl time.Duration, load func(ctx context.Context) (*T, error)) (*T, error) {
	var (
		fresh  *T
		loaded bool
	)
	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		fresh, loaded = v, true
		return json.Marshal(v)
	})
	if err != nil {
		return nil, err
	}
	// 本次调用亲自回源的，不必再解码一遍
	if loaded {
		return fresh, nil
	}
	if bytes.Equal(b, nullJSON) {
		return nil, nil
	}
	out := new(T)
	if err := json.Unmarshal(b, out); err != nil {
		return nil, &decodeError{key: key, err: err}
	}
	return out, nil
}
