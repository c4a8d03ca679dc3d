// Package access implementa el registro de permisos y la compuerta de autorización por rol.
package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/backoffice-api/internal/domain"
	domainaccess "github.com/jhoicas/backoffice-api/internal/domain/access"
	"github.com/jhoicas/backoffice-api/pkg/logger"
	"github.com/jhoicas/backoffice-api/pkg/metrics"
)

// Motivos de una decisión.
const (
	ReasonAllowed             = "allowed"
	ReasonInsufficientRole    = "insufficient_role"
	ReasonPageNotConfigured   = "page_not_configured"
	ReasonActionNotConfigured = "action_not_configured"
)

// RequirementSource origen del nivel exigido por recurso (PermissionRegistry en producción).
type RequirementSource interface {
	GetRequiredLevel(ctx context.Context, kind domainaccess.ResourceKind, key string) (Requirement, error)
}

// Decision resultado detallado de un chequeo individual.
type Decision struct {
	Allowed       bool
	Kind          domainaccess.ResourceKind
	Key           string
	ActorLevel    int
	RequiredLevel int
	RequiredRole  domainaccess.Role
	Configured    bool
	Reason        string
}

// AuthorizationGate decide allow/deny combinando el rol del actor con las reglas vigentes.
type AuthorizationGate struct {
	source  RequirementSource
	metrics *metrics.Metrics
	log     *logger.Logger
}

// NewAuthorizationGate m y log pueden ser nil.
func NewAuthorizationGate(source RequirementSource, m *metrics.Metrics, log *logger.Logger) *AuthorizationGate {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthorizationGate{source: source, metrics: m, log: log.Component("authz")}
}

// Check evalúa un único recurso.
func (g *AuthorizationGate) Check(ctx context.Context, role string, kind domainaccess.ResourceKind, key string) (Decision, error) {
	req, err := g.source.GetRequiredLevel(ctx, kind, key)
	if err != nil {
		return Decision{}, fmt.Errorf("%w: regla %s %q: %w", domain.ErrInternal, kind, key, err)
	}
	actor := domainaccess.LevelOf(role)
	d := Decision{
		Allowed:       actor >= req.Level,
		Kind:          kind,
		Key:           key,
		ActorLevel:    actor,
		RequiredLevel: req.Level,
		RequiredRole:  req.Role,
		Configured:    req.Configured,
		Reason:        ReasonAllowed,
	}
	switch {
	case !req.Configured && kind == domainaccess.KindPage:
		d.Reason = ReasonPageNotConfigured
	case !req.Configured:
		d.Reason = ReasonActionNotConfigured
	case !d.Allowed:
		d.Reason = ReasonInsufficientRole
	}
	g.metrics.AuthzDecision(string(kind), d.Allowed)
	if !d.Allowed {
		g.log.Debug().Str("kind", string(kind)).Str("key", key).Str("role", role).
			Int("required_level", req.Level).Str("reason", d.Reason).Msg("acceso denegado")
	}
	return d, nil
}

// Authorize evalúa página y acción (las que no estén vacías) con semántica AND.
// Devuelve *domain.ForbiddenError en la primera denegación.
func (g *AuthorizationGate) Authorize(ctx context.Context, role string, res domainaccess.Resource) error {
	checks := []struct {
		kind domainaccess.ResourceKind
		key  string
	}{
		{domainaccess.KindPage, res.Page},
		{domainaccess.KindAction, res.Action},
	}
	for _, c := range checks {
		if c.key == "" {
			continue
		}
		d, err := g.Check(ctx, role, c.kind, c.key)
		if err != nil {
			return err
		}
		if !d.Allowed {
			return &domain.ForbiddenError{
				Kind:          string(d.Kind),
				Key:           d.Key,
				RequiredLevel: d.RequiredLevel,
				ActorLevel:    d.ActorLevel,
				Configured:    d.Configured,
				Unreachable:   d.RequiredLevel >= domainaccess.LevelDenied,
			}
		}
	}
	return nil
}

// IsAllowed variante booleana de Authorize. Un recurso vacío se permite.
func (g *AuthorizationGate) IsAllowed(ctx context.Context, role string, res domainaccess.Resource) (bool, error) {
	err := g.Authorize(ctx, role, res)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrForbidden) {
		return false, nil
	}
	return false, err
}
