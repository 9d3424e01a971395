package auth

import (
	"context"
	"sync"
	"time"
)

// Denylist records revoked token ids until the token would have expired
// anyway. core/cache.Cache implements it on Redis.
type Denylist interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// Claim revokes jti only if it is not revoked yet and reports whether
	// this call did it. Concurrent claims on one jti have a single winner.
	Claim(ctx context.Context, jti string, until time.Time) (bool, error)
}

// MemoryDenylist is the single-process fallback used when Redis is not
// configured.
type MemoryDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{revoked: make(map[string]time.Time), now: time.Now}
}

func (d *MemoryDenylist) Revoke(_ context.Context, jti string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sweep()
	if until.After(d.now()) {
		d.revoked[jti] = until
	}
	return nil
}

func (d *MemoryDenylist) Claim(_ context.Context, jti string, until time.Time) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sweep()
	if _, ok := d.revoked[jti]; ok {
		return false, nil
	}
	if until.After(d.now()) {
		d.revoked[jti] = until
	}
	return true, nil
}

// sweep 清掉已过期的记录；调用方持有锁
func (d *MemoryDenylist) sweep() {
	now := d.now()
	for k, exp := range d.revoked {
		if !exp.After(now) {
			delete(d.revoked, k)
		}
	}
}

func (d *MemoryDenylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	exp, ok := d.revoked[jti]
	return ok && exp.After(d.now()), nil
}
