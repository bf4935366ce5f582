package dupes

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/jvanloock/dupdirs/pkg/cache"
	"github.com/jvanloock/dupdirs/pkg/ratelimit"
	"github.com/jvanloock/dupdirs/pkg/recovery"
	"github.com/jvanloock/dupdirs/pkg/storage"
)

// Hasher computes SHA-256 content hashes with cached-first lookup.
// Hash failures never escape as errors: they are routed through the
// recovery policy and collapse to the empty-hash sentinel, so a broken
// file simply contributes no matches. Cancellation is the exception
// and always propagates.
type Hasher struct {
	backend storage.Backend
	store   *cache.Store
	policy  *recovery.Policy

	bufferPool *sync.Pool
	limiter    *ratelimit.Limiter
}

// NewHasher creates a hasher over the given backend and cache store.
func NewHasher(backend storage.Backend, store *cache.Store, policy *recovery.Policy, bufferSize int) *Hasher {
	if bufferSize < 4096 {
		bufferSize = 65536
	}
	return &Hasher{
		backend: backend,
		store:   store,
		policy:  policy,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}
}

// SetLimiter installs an optional bandwidth limiter for hash reads.
func (h *Hasher) SetLimiter(limiter *ratelimit.Limiter) {
	h.limiter = limiter
}

// HashFile returns the file's content hash, computing and caching it
// on a cache miss. The empty string means the file could not be
// hashed; the failure has already been recorded with the policy.
func (h *Hasher) HashFile(ctx context.Context, path string) (string, error) {
	if hash, ok := h.store.GetHash(path); ok {
		return hash, nil
	}

	hash, err := h.compute(ctx, path)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		h.policy.HandleFileAccessError(path, err)
		return "", nil
	}

	h.store.PutHash(path, hash)
	return hash, nil
}

func (h *Hasher) compute(ctx context.Context, path string) (string, error) {
	rc, err := h.backend.Read(ctx, path)
	if err != nil {
		return "", err
	}
	reader := h.limiter.Wrap(ctx, rc)
	defer reader.Close()

	hasher := sha256.New()

	bufPtr := h.bufferPool.Get().(*[]byte)
	buffer := *bufPtr
	defer h.bufferPool.Put(bufPtr)

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		n, err := reader.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}
