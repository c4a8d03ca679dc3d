package access_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appaccess "github.com/jhoicas/backoffice-api/internal/application/access"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/access"
	"github.com/jhoicas/backoffice-api/pkg/metrics"
)

func newGate(t *testing.T) (*appaccess.AuthorizationGate, *appaccess.PermissionRegistry, *metrics.Metrics) {
	t.Helper()
	reg, _ := newRegistry(t)
	m := metrics.New(prometheus.NewRegistry())
	return appaccess.NewAuthorizationGate(reg, m, nil), reg, m
}

func TestGate_AccionSinReglaSeNiega(t *testing.T) {
	gate, _, m := newGate(t)
	ctx := context.Background()

	for _, role := range access.Roles() {
		ok, err := gate.IsAllowed(ctx, string(role), access.Action("delete_item"))
		require.NoError(t, err)
		assert.False(t, ok, role)
	}

	err := gate.Authorize(ctx, "staff", access.Action("delete_item"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	var fe *domain.ForbiddenError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "delete_item", fe.Key)
	assert.False(t, fe.Configured)
	assert.True(t, fe.Unreachable)
	assert.Contains(t, fe.Error(), "no está configurada")

	assert.Equal(t, float64(len(access.Roles())+1), testutil.ToFloat64(m.AuthzDecisionsTotal.WithLabelValues("action", "deny")))
}

func TestGate_PaginaSinReglaPermiteStaff(t *testing.T) {
	gate, _, _ := newGate(t)
	ctx := context.Background()

	d, err := gate.Check(ctx, "staff", access.KindPage, "items")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, appaccess.ReasonPageNotConfigured, d.Reason)

	d, err = gate.Check(ctx, "bodeguero", access.KindPage, "items")
	require.NoError(t, err)
	assert.False(t, d.Allowed, "un rol desconocido tiene nivel 0")
}

func TestGate_SemanticaAND(t *testing.T) {
	gate, reg, _ := newGate(t)
	ctx := context.Background()

	_, _, err := reg.Upsert(ctx, access.KindPage, "finance_overview", "staff")
	require.NoError(t, err)
	_, _, err = reg.Upsert(ctx, access.KindAction, "delete_finance_category", "md")
	require.NoError(t, err)

	res := access.Resource{Page: "finance_overview", Action: "delete_finance_category"}

	ok, err := gate.IsAllowed(ctx, "operations_manager", res)
	require.NoError(t, err)
	assert.False(t, ok, "pasa la página pero no la acción")

	ok, err = gate.IsAllowed(ctx, "md", res)
	require.NoError(t, err)
	assert.True(t, ok)

	_, _, err = reg.Upsert(ctx, access.KindPage, "finance_overview", "admin")
	require.NoError(t, err)
	ok, err = gate.IsAllowed(ctx, "md", res)
	require.NoError(t, err)
	assert.False(t, ok, "pasa la acción pero no la página")
}

func TestGate_Monotonia(t *testing.T) {
	gate, reg, _ := newGate(t)
	ctx := context.Background()

	for _, minRole := range access.Roles() {
		key := "action_" + string(minRole)
		_, _, err := reg.Upsert(ctx, access.KindAction, key, string(minRole))
		require.NoError(t, err)
	}
	roles := access.Roles()
	for _, minRole := range roles {
		key := "action_" + string(minRole)
		for i := range roles {
			for j := i + 1; j < len(roles); j++ {
				low, err := gate.IsAllowed(ctx, string(roles[i]), access.Action(key))
				require.NoError(t, err)
				high, err := gate.IsAllowed(ctx, string(roles[j]), access.Action(key))
				require.NoError(t, err)
				if low {
					assert.True(t, high, "%s permitido pero %s no en %s", roles[i], roles[j], key)
				}
			}
		}
	}
}

func TestGate_CambiosDeReglaAplicanInmediatamente(t *testing.T) {
	gate, reg, _ := newGate(t)
	ctx := context.Background()

	_, _, err := reg.Upsert(ctx, access.KindAction, "create_item", "staff")
	require.NoError(t, err)
	ok, err := gate.IsAllowed(ctx, "staff", access.Action("create_item"))
	require.NoError(t, err)
	assert.True(t, ok)

	_, _, err = reg.Upsert(ctx, access.KindAction, "create_item", "admin")
	require.NoError(t, err)
	ok, err = gate.IsAllowed(ctx, "staff", access.Action("create_item"))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, reg.Delete(ctx, access.KindAction, "create_item"))
	ok, err = gate.IsAllowed(ctx, "admin", access.Action("create_item"))
	require.NoError(t, err)
	assert.False(t, ok, "sin regla vuelve a la política deny")
}

func TestGate_RecursoVacioSePermite(t *testing.T) {
	gate, _, _ := newGate(t)
	ok, err := gate.IsAllowed(context.Background(), "", access.Resource{})
	require.NoError(t, err)
	assert.True(t, ok)
}

type failingSource struct{}

func (failingSource) GetRequiredLevel(context.Context, access.ResourceKind, string) (appaccess.Requirement, error) {
	return appaccess.Requirement{}, errors.New("db caída")
}

func TestGate_ErrorDeRepositorioEsInterno(t *testing.T) {
	gate := appaccess.NewAuthorizationGate(failingSource{}, nil, nil)
	ok, err := gate.IsAllowed(context.Background(), "admin", access.Page("items"))
	assert.False(t, ok)
	assert.True(t, errors.Is(err, domain.ErrInternal))
	assert.False(t, errors.Is(err, domain.ErrForbidden))
}
