package auth

import (
	"context"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/sync/semaphore"

	"github.com/gatewarden/gatewarden/internal/store"
)

// Argon2i parameters matching the hashes already in storage.
const (
	hashTime    = 3
	hashMemory  = 4096
	hashThreads = 1
	hashKeyLen  = 32
)

// passwordSalt is shared by all users so the stored hash can be matched by an
// equality lookup. A per-user random salt would be stronger but breaks every
// existing hash; see DESIGN.md before changing this.
const passwordSalt = "22f65e79-496a-4b48-8abc-f83e1e52aa4e"

// Hasher computes deterministic argon2i password hashes. Hashing is
// CPU-bound, so concurrent computations are bounded by a weighted semaphore;
// a sign-in burst queues here instead of starving the scheduler.
type Hasher struct {
	salt []byte
	sem  *semaphore.Weighted
}

// NewHasher constructs a Hasher allowing up to workers concurrent hashes.
func NewHasher(workers int64) *Hasher {
	if workers <= 0 {
		workers = 1
	}
	return &Hasher{
		salt: []byte(passwordSalt),
		sem:  semaphore.NewWeighted(workers),
	}
}

// Hash derives the PHC-encoded argon2i hash of password. Waiting for a
// hashing slot respects ctx; cancellation surfaces as a temporary fault.
func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("auth: hash slot: %w", store.ErrTemporary)
	}
	defer h.sem.Release(1)

	key := argon2.Key([]byte(password), h.salt, hashTime, hashMemory, hashThreads, hashKeyLen)
	encoded := fmt.Sprintf("$argon2i$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, hashMemory, hashTime, hashThreads,
		base64.RawStdEncoding.EncodeToString(h.salt),
		base64.RawStdEncoding.EncodeToString(key))
	return encoded, nil
}
