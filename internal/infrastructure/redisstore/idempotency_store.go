// Package redisstore guarda las claves de idempotencia de los eventos de ubicación.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/jhoicas/backoffice-api/internal/application/inventory"
)

var _ inventory.IdempotencyStore = (*IdempotencyStore)(nil)

const (
	keyPrefix    = "idem:location-event:"
	pendingValue = "pending"
)

// IdempotencyStore reserva la clave con SETNX ("pending") y luego la reemplaza por el resultado JSON.
// Ambos estados expiran con el TTL configurado.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewClient abre el cliente a partir de REDIS_URL y verifica la conexión.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("REDIS_URL inválida: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("conectar a redis: %w", err)
	}
	return client, nil
}

// NewIdempotencyStore construye el almacén sobre un cliente ya abierto.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Reserve ver inventory.IdempotencyStore.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string) (bool, error) {
	ok, err := s.client.SetNX(ctx, keyPrefix+key, pendingValue, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

// Get ver inventory.IdempotencyStore.
func (s *IdempotencyStore) Get(ctx context.Context, key string) (*inventory.LocationEventResult, error) {
	data, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	if string(data) == pendingValue {
		return nil, nil
	}
	var res inventory.LocationEventResult
	if err := json.Unmarshal(data, &res); err != nil {
		s.client.Del(ctx, keyPrefix+key)
		return nil, fmt.Errorf("decodificar resultado idempotente: %w", err)
	}
	return &res, nil
}

// Complete ver inventory.IdempotencyStore.
func (s *IdempotencyStore) Complete(ctx context.Context, key string, res *inventory.LocationEventResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("codificar resultado idempotente: %w", err)
	}
	return s.client.Set(ctx, keyPrefix+key, data, s.ttl).Err()
}

// Release ver inventory.IdempotencyStore.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, keyPrefix+key).Err()
}
