package repository

import (
	"context"

	"github.com/jhoicas/backoffice-api/internal/domain/access"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// PermissionRepository define el puerto de persistencia de reglas de acceso (página/acción -> rol mínimo).
// (Kind, Key) es único.
type PermissionRepository interface {
	// Get devuelve la regla o nil si no existe.
	Get(ctx context.Context, kind access.ResourceKind, key string) (*entity.PermissionRule, error)
	// Upsert crea la regla o actualiza MinRole en sitio. MinRole vacío: al crear usa defaultRole,
	// al actualizar conserva el valor almacenado. rule queda con el estado almacenado (ID, MinRole, fechas);
	// created indica si se insertó una fila nueva.
	Upsert(ctx context.Context, rule *entity.PermissionRule, defaultRole access.Role) (created bool, err error)
	// CreateIfAbsent inserta la regla solo si no existe; nunca sobrescribe.
	CreateIfAbsent(ctx context.Context, rule *entity.PermissionRule) (bool, error)
	List(ctx context.Context, kind access.ResourceKind) ([]*entity.PermissionRule, error)
	// Delete elimina la regla; domain.ErrNotFound si no existe.
	Delete(ctx context.Context, kind access.ResourceKind, key string) error
}
