package inventory_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/inventory"
)

func TestParseLocationCode_VariantesResuelvenIgual(t *testing.T) {
	inputs := []string{
		"a1-r02",
		"A1-R02",
		"A1 \u2013 R02", // en dash
		"A1\u2014R02",   // em dash
		"A1\u2212R02",   // signo menos
		"A1\uff0dR02",   // guion de ancho completo
		"  a1 -r02 ",
	}
	for _, in := range inputs {
		loc, err := inventory.ParseLocationCode(in)
		require.NoError(t, err, in)
		assert.Equal(t, "A1", loc.Row, in)
		assert.Equal(t, "R02", loc.Rack, in)
		assert.Equal(t, "A1-R02", loc.String(), in)
	}
}

func TestParseLocationCode_FormatoInvalido(t *testing.T) {
	for _, in := range []string{"", "A1", "A1R02", "A1-R02-S3", "-R02", "A1-", " - "} {
		_, err := inventory.ParseLocationCode(in)
		require.Error(t, err, in)
		assert.True(t, errors.Is(err, domain.ErrLocationNotFound), in)
		assert.True(t, errors.Is(err, domain.ErrNotFound), "debe clasificarse como NotFound: %s", in)
	}
}

func TestFoldName(t *testing.T) {
	assert.Equal(t, inventory.FoldName("Widget"), inventory.FoldName("  wIDGET "))
	assert.NotEqual(t, inventory.FoldName("Widget"), inventory.FoldName("Widgets"))
}
