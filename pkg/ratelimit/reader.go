package ratelimit

import (
	"context"
	"io"
	"sync"
	"time"
)

// Limiter is a token-bucket byte budget shared across any number of
// wrapped readers. Hash workers reading from a slow network share can
// be capped collectively with a single Limiter.
type Limiter struct {
	bytesPerSecond int64
	bucketSize     int64

	mu         sync.Mutex
	tokens     int64
	lastUpdate time.Time
}

// NewLimiter creates a limiter for the given bytes-per-second budget.
// A non-positive budget returns nil, which means no limiting.
func NewLimiter(bytesPerSecond int64) *Limiter {
	if bytesPerSecond <= 0 {
		return nil
	}

	// One second of burst, with a floor so small budgets still read
	// in reasonable chunks.
	bucketSize := bytesPerSecond
	if bucketSize < 65536 {
		bucketSize = 65536
	}

	return &Limiter{
		bytesPerSecond: bytesPerSecond,
		bucketSize:     bucketSize,
		tokens:         bucketSize,
		lastUpdate:     time.Now(),
	}
}

// Wrap returns a rate-limited view of rc. A nil limiter returns rc
// unchanged.
func (l *Limiter) Wrap(ctx context.Context, rc io.ReadCloser) io.ReadCloser {
	if l == nil {
		return rc
	}
	return &reader{ctx: ctx, rc: rc, limiter: l}
}

type reader struct {
	ctx     context.Context
	rc      io.ReadCloser
	limiter *Limiter
}

// Read blocks until the bucket has tokens for the requested chunk.
func (r *reader) Read(p []byte) (int, error) {
	select {
	case <-r.ctx.Done():
		return 0, r.ctx.Err()
	default:
	}

	want := int64(len(p))
	if want > r.limiter.bucketSize {
		want = r.limiter.bucketSize
	}

	if err := r.limiter.wait(r.ctx, want); err != nil {
		return 0, err
	}

	n, err := r.rc.Read(p[:want])
	if n > 0 {
		r.limiter.consume(int64(n))
	}
	return n, err
}

// Close closes the underlying reader.
func (r *reader) Close() error {
	return r.rc.Close()
}

func (l *Limiter) wait(ctx context.Context, needed int64) error {
	for {
		l.mu.Lock()
		l.refill()
		if l.tokens >= needed {
			l.mu.Unlock()
			return nil
		}
		deficit := needed - l.tokens
		l.mu.Unlock()

		sleep := time.Duration(float64(deficit) / float64(l.bytesPerSecond) * float64(time.Second))
		if sleep < time.Millisecond {
			sleep = time.Millisecond
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
	}
}

// refill must be called with the mutex held.
func (l *Limiter) refill() {
	now := time.Now()
	elapsed := now.Sub(l.lastUpdate)
	add := int64(float64(elapsed) / float64(time.Second) * float64(l.bytesPerSecond))
	if add > 0 {
		l.tokens += add
		if l.tokens > l.bucketSize {
			l.tokens = l.bucketSize
		}
		l.lastUpdate = now
	}
}

func (l *Limiter) consume(n int64) {
	l.mu.Lock()
	l.tokens -= n
	if l.tokens < 0 {
		l.tokens = 0
	}
	l.mu.Unlock()
}
