package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/access"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

var _ repository.PermissionRepository = (*PermissionRepo)(nil)

// PermissionRepo implementación de PermissionRepository sobre PostgreSQL.
type PermissionRepo struct {
	q Querier
}

// NewPermissionRepository construye el adaptador de reglas de acceso. Pasar pool o tx (Querier).
func NewPermissionRepository(q Querier) *PermissionRepo {
	return &PermissionRepo{q: q}
}

// Get obtiene la regla de (kind, key) o nil si no existe.
func (r *PermissionRepo) Get(ctx context.Context, kind access.ResourceKind, key string) (*entity.PermissionRule, error) {
	query := `
		SELECT id, kind, key, min_role, created_at, updated_at
		FROM permission_rules WHERE kind = $1 AND key = $2`
	rule, err := scanRule(r.q.QueryRow(ctx, query, string(kind), key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get permission rule: %w", err)
	}
	return rule, nil
}

// Upsert INSERT ... ON CONFLICT: nunca duplica filas y serializa escrituras concurrentes sobre la misma clave.
func (r *PermissionRepo) Upsert(ctx context.Context, rule *entity.PermissionRule, defaultRole access.Role) (bool, error) {
	query := `
		INSERT INTO permission_rules (id, kind, key, min_role, created_at, updated_at)
		VALUES ($1, $2, $3, COALESCE(NULLIF($4::text, ''), $5::text), $6, $6)
		ON CONFLICT (kind, key) DO UPDATE
		SET min_role = COALESCE(NULLIF($4::text, ''), permission_rules.min_role),
		    updated_at = $6
		RETURNING id, min_role, created_at, updated_at, (xmax = 0) AS inserted`
	var (
		minRole  string
		inserted bool
	)
	err := r.q.QueryRow(ctx, query,
		rule.ID, string(rule.Kind), rule.Key, string(rule.MinRole), string(defaultRole), rule.UpdatedAt,
	).Scan(&rule.ID, &minRole, &rule.CreatedAt, &rule.UpdatedAt, &inserted)
	if err != nil {
		return false, classify("upsert permission rule", err)
	}
	rule.MinRole = access.Role(minRole)
	return inserted, nil
}

// CreateIfAbsent inserta la regla si (kind, key) no existe.
func (r *PermissionRepo) CreateIfAbsent(ctx context.Context, rule *entity.PermissionRule) (bool, error) {
	query := `
		INSERT INTO permission_rules (id, kind, key, min_role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (kind, key) DO NOTHING`
	cmd, err := r.q.Exec(ctx, query,
		rule.ID, string(rule.Kind), rule.Key, string(rule.MinRole), rule.CreatedAt, rule.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert permission rule: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// List reglas del tipo ordenadas por key.
func (r *PermissionRepo) List(ctx context.Context, kind access.ResourceKind) ([]*entity.PermissionRule, error) {
	query := `
		SELECT id, kind, key, min_role, created_at, updated_at
		FROM permission_rules WHERE kind = $1 ORDER BY key`
	rows, err := r.q.Query(ctx, query, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list permission rules: %w", err)
	}
	defer rows.Close()

	out := make([]*entity.PermissionRule, 0)
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan permission rule: %w", err)
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

// Delete elimina la regla de (kind, key).
func (r *PermissionRepo) Delete(ctx context.Context, kind access.ResourceKind, key string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM permission_rules WHERE kind = $1 AND key = $2`, string(kind), key)
	if err != nil {
		return fmt.Errorf("delete permission rule: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: regla %s %q", domain.ErrNotFound, kind, key)
	}
	return nil
}

func scanRule(row pgx.Row) (*entity.PermissionRule, error) {
	var (
		rule          entity.PermissionRule
		kind, minRole string
	)
	if err := row.Scan(&rule.ID, &kind, &rule.Key, &minRole, &rule.CreatedAt, &rule.UpdatedAt); err != nil {
		return nil, err
	}
	rule.Kind = access.ResourceKind(kind)
	rule.MinRole = access.Role(minRole)
	return &rule, nil
}
