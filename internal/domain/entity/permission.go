package entity

import (
	"time"

	"github.com/jhoicas/backoffice-api/internal/domain/access"
)

// PermissionRule rol mínimo para una página o acción, configurado por administradores.
// (Kind, Key) es único; las escrituras posteriores actualizan MinRole en sitio.
type PermissionRule struct {
	ID        string
	Kind      access.ResourceKind
	Key       string
	MinRole   access.Role
	CreatedAt time.Time
	UpdatedAt time.Time
}
