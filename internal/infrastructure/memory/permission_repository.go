// Package memory implementa los puertos de persistencia en memoria para pruebas y desarrollo local.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/access"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

var _ repository.PermissionRepository = (*PermissionRepo)(nil)

type ruleKey struct {
	kind access.ResourceKind
	key  string
}

// PermissionRepo reglas de acceso en memoria, seguro para uso concurrente.
type PermissionRepo struct {
	mu    sync.RWMutex
	rules map[ruleKey]entity.PermissionRule
}

// NewPermissionRepository construye el repositorio vacío.
func NewPermissionRepository() *PermissionRepo {
	return &PermissionRepo{rules: make(map[ruleKey]entity.PermissionRule)}
}

// Get devuelve una copia de la regla o nil.
func (r *PermissionRepo) Get(_ context.Context, kind access.ResourceKind, key string) (*entity.PermissionRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[ruleKey{kind, key}]
	if !ok {
		return nil, nil
	}
	return &rule, nil
}

// Upsert ver repository.PermissionRepository. Actualiza rule con el estado final almacenado.
func (r *PermissionRepo) Upsert(_ context.Context, rule *entity.PermissionRule, defaultRole access.Role) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := ruleKey{rule.Kind, rule.Key}
	stored, exists := r.rules[k]
	if !exists {
		if rule.MinRole == "" {
			rule.MinRole = defaultRole
		}
		r.rules[k] = *rule
		return true, nil
	}
	if rule.MinRole != "" {
		stored.MinRole = rule.MinRole
	}
	stored.UpdatedAt = rule.UpdatedAt
	r.rules[k] = stored
	*rule = stored
	return false, nil
}

// CreateIfAbsent inserta solo si no existe.
func (r *PermissionRepo) CreateIfAbsent(_ context.Context, rule *entity.PermissionRule) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := ruleKey{rule.Kind, rule.Key}
	if _, exists := r.rules[k]; exists {
		return false, nil
	}
	r.rules[k] = *rule
	return true, nil
}

// List reglas del tipo ordenadas por key.
func (r *PermissionRepo) List(_ context.Context, kind access.ResourceKind) ([]*entity.PermissionRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.PermissionRule, 0)
	for k, rule := range r.rules {
		if k.kind == kind {
			rule := rule
			out = append(out, &rule)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Delete elimina la regla.
func (r *PermissionRepo) Delete(_ context.Context, kind access.ResourceKind, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := ruleKey{kind, key}
	if _, ok := r.rules[k]; !ok {
		return fmt.Errorf("%w: regla %s %q", domain.ErrNotFound, kind, key)
	}
	delete(r.rules, k)
	return nil
}

// Len número total de reglas (útil en pruebas).
func (r *PermissionRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}
