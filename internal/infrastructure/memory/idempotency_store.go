package memory

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/jhoicas/backoffice-api/internal/application/inventory"
)

var _ inventory.IdempotencyStore = (*IdempotencyStore)(nil)

// maxIdempotencyKeys tope de claves retenidas; al llenarse se descartan las menos usadas.
const maxIdempotencyKeys = 10_000

// IdempotencyStore claves de idempotencia en memoria del proceso (LRU con TTL). Se usa cuando no hay
// REDIS_URL (una sola instancia) y en pruebas. Un valor nil en la caché indica clave en curso.
type IdempotencyStore struct {
	mu    sync.Mutex
	cache *lru.LRU[string, *inventory.LocationEventResult]
}

// NewIdempotencyStore ttl <= 0 significa sin expiración.
func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	if ttl < 0 {
		ttl = 0
	}
	return &IdempotencyStore{
		cache: lru.NewLRU[string, *inventory.LocationEventResult](maxIdempotencyKeys, nil, ttl),
	}
}

// Reserve ver inventory.IdempotencyStore.
func (s *IdempotencyStore) Reserve(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cache.Get(key); ok {
		return false, nil
	}
	s.cache.Add(key, nil)
	return true, nil
}

// Get ver inventory.IdempotencyStore.
func (s *IdempotencyStore) Get(_ context.Context, key string) (*inventory.LocationEventResult, error) {
	res, ok := s.cache.Get(key)
	if !ok || res == nil {
		return nil, nil
	}
	cp := *res
	return &cp, nil
}

// Complete ver inventory.IdempotencyStore.
func (s *IdempotencyStore) Complete(_ context.Context, key string, res *inventory.LocationEventResult) error {
	cp := *res
	cp.Replayed = false
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Add(key, &cp)
	return nil
}

// Release ver inventory.IdempotencyStore.
func (s *IdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Remove(key)
	return nil
}

// Len claves vivas.
func (s *IdempotencyStore) Len() int {
	return s.cache.Len()
}
