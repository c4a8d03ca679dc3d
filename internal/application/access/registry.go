package access

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/backoffice-api/internal/domain"
	domainaccess "github.com/jhoicas/backoffice-api/internal/domain/access"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

// PolicyDeny valor de política por defecto que niega todo recurso sin regla.
const PolicyDeny = "deny"

// DefaultPolicy nivel requerido cuando no hay regla para el recurso: un rol o "deny".
type DefaultPolicy struct {
	Page   string
	Action string
}

// Requirement nivel exigido para un recurso y su origen.
type Requirement struct {
	Level      int
	Role       domainaccess.Role // vacío si no corresponde a un rol (deny o rol almacenado inválido)
	Configured bool              // false si se aplicó la política por defecto
}

// PermissionRegistry reglas página/acción -> rol mínimo. No cachea: cada consulta lee el repositorio
// para que los cambios de los administradores apliquen en la siguiente petición.
type PermissionRegistry struct {
	repo          repository.PermissionRepository
	pageDefault   Requirement
	actionDefault Requirement
	now           func() time.Time
}

// NewPermissionRegistry construye el registro validando la política por defecto.
func NewPermissionRegistry(repo repository.PermissionRepository, policy DefaultPolicy) (*PermissionRegistry, error) {
	page, err := parsePolicy(policy.Page)
	if err != nil {
		return nil, fmt.Errorf("política de páginas: %w", err)
	}
	action, err := parsePolicy(policy.Action)
	if err != nil {
		return nil, fmt.Errorf("política de acciones: %w", err)
	}
	return &PermissionRegistry{repo: repo, pageDefault: page, actionDefault: action, now: time.Now}, nil
}

func parsePolicy(s string) (Requirement, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == PolicyDeny {
		return Requirement{Level: domainaccess.LevelDenied}, nil
	}
	r, ok := domainaccess.ParseRole(s)
	if !ok {
		return Requirement{}, fmt.Errorf("%w: %q (use un rol o %q)", domain.ErrInvalidRole, s, PolicyDeny)
	}
	return Requirement{Level: r.Level(), Role: r}, nil
}

// GetRequiredLevel nivel exigido para (kind, key). Sin regla: política por defecto del tipo.
// Una regla con un rol desconocido exige LevelDenied.
func (r *PermissionRegistry) GetRequiredLevel(ctx context.Context, kind domainaccess.ResourceKind, key string) (Requirement, error) {
	rule, err := r.repo.Get(ctx, kind, key)
	if err != nil {
		return Requirement{}, err
	}
	if rule == nil {
		if kind == domainaccess.KindPage {
			return r.pageDefault, nil
		}
		return r.actionDefault, nil
	}
	role, ok := domainaccess.ParseRole(string(rule.MinRole))
	if !ok {
		return Requirement{Level: domainaccess.LevelDenied, Configured: true}, nil
	}
	return Requirement{Level: role.Level(), Role: role, Configured: true}, nil
}

// Upsert crea o actualiza la regla de (kind, key). minRole vacío: staff al crear, sin cambio al actualizar.
func (r *PermissionRegistry) Upsert(ctx context.Context, kind domainaccess.ResourceKind, key, minRole string) (*entity.PermissionRule, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false, fmt.Errorf("%w: key vacío", domain.ErrInvalidInput)
	}
	if _, ok := domainaccess.ParseKind(string(kind)); !ok {
		return nil, false, fmt.Errorf("%w: tipo %q", domain.ErrInvalidInput, kind)
	}
	var role domainaccess.Role
	if strings.TrimSpace(minRole) != "" {
		parsed, ok := domainaccess.ParseRole(minRole)
		if !ok {
			return nil, false, fmt.Errorf("%w: %q", domain.ErrInvalidRole, minRole)
		}
		role = parsed
	}
	now := r.now()
	rule := &entity.PermissionRule{
		ID:        uuid.New().String(),
		Kind:      kind,
		Key:       key,
		MinRole:   role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	created, err := r.repo.Upsert(ctx, rule, domainaccess.LowestRole())
	if err != nil {
		return nil, false, err
	}
	return rule, created, nil
}

// List reglas configuradas del tipo, ordenadas por key.
func (r *PermissionRegistry) List(ctx context.Context, kind domainaccess.ResourceKind) ([]*entity.PermissionRule, error) {
	return r.repo.List(ctx, kind)
}

// Delete elimina la regla; el recurso vuelve a la política por defecto.
func (r *PermissionRegistry) Delete(ctx context.Context, kind domainaccess.ResourceKind, key string) error {
	return r.repo.Delete(ctx, kind, strings.TrimSpace(key))
}

// Seed instala el catálogo incorporado sin sobrescribir reglas existentes. Devuelve cuántas insertó.
func (r *PermissionRegistry) Seed(ctx context.Context) (int, error) {
	inserted := 0
	now := r.now()
	for _, e := range domainaccess.Catalog() {
		ok, err := r.repo.CreateIfAbsent(ctx, &entity.PermissionRule{
			ID:        uuid.New().String(),
			Kind:      e.Kind,
			Key:       e.Key,
			MinRole:   e.MinRole,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return inserted, fmt.Errorf("seed %s %s: %w", e.Kind, e.Key, err)
		}
		if ok {
			inserted++
		}
	}
	return inserted, nil
}
