// Package staging holds proposed change batches between the moment the
// assistant suggests them and the moment a human confirms or rejects them.
// Nothing is applied to a plan until confirmation, so an abandoned proposal
// needs no rollback — it just ages out of the store.
package staging

import (
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/jmichels/tripflow/internal/domain"
)

// Store is the keyed store for staged change batches. Implementations must
// make Take atomic: at most one caller ever receives a given batch, which is
// what gives confirm its exactly-once semantics.
type Store interface {
	// Stage assigns the batch a fresh opaque change id, records its creation
	// time, and stores it. Returns the change id.
	Stage(batch domain.ChangeBatch) string

	// Take removes and returns the batch for id. The second Take of the same
	// id reports false, as does an id that expired or never existed.
	Take(id string) (domain.ChangeBatch, bool)

	// Delete removes the batch for id unconditionally. Deleting an unknown
	// id is a no-op.
	Delete(id string)
}

// CacheStore is an in-memory Store with a retention window enforced by
// go-cache's background janitor. An expired change id is indistinguishable
// from an unknown one.
type CacheStore struct {
	mu sync.Mutex
	c  *gocache.Cache
}

// NewCacheStore constructs a CacheStore whose entries expire after ttl.
// A non-positive ttl disables expiry entirely (the host then owns cleanup).
func NewCacheStore(ttl time.Duration) *CacheStore {
	if ttl <= 0 {
		return &CacheStore{c: gocache.New(gocache.NoExpiration, 0)}
	}
	return &CacheStore{c: gocache.New(ttl, ttl)}
}

func (s *CacheStore) Stage(batch domain.ChangeBatch) string {
	id := uuid.NewString()
	batch.ID = id
	batch.CreatedAt = time.Now().UTC()
	s.c.Set(id, batch, gocache.DefaultExpiration)
	return id
}

func (s *CacheStore) Take(id string) (domain.ChangeBatch, bool) {
	// go-cache is safe for concurrent use, but Get followed by Delete is not
	// atomic on its own; the mutex closes that window.
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.c.Get(id)
	if !ok {
		return domain.ChangeBatch{}, false
	}
	s.c.Delete(id)
	return v.(domain.ChangeBatch), true
}

func (s *CacheStore) Delete(id string) {
	s.c.Delete(id)
}

// compile-time check: CacheStore must satisfy Store.
var _ Store = (*CacheStore)(nil)
