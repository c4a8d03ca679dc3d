package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/backoffice-api/internal/domain"
)

func TestClassify(t *testing.T) {
	for _, code := range []string{"40001", "40P01", "55P03", "23505"} {
		err := classify("update stock", fmt.Errorf("exec: %w", &pgconn.PgError{Code: code}))
		assert.True(t, errors.Is(err, domain.ErrConflict), code)
	}

	err := classify("update stock", &pgconn.PgError{Code: "23514"})
	assert.False(t, errors.Is(err, domain.ErrConflict))
	assert.Contains(t, err.Error(), "update stock")

	assert.NoError(t, classify("x", nil))
	assert.False(t, isUniqueViolation(errors.New("23505 en el texto no cuenta")))
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%%", likePattern(""))
	assert.Equal(t, `%WG\_1\%%`, likePattern("WG_1%"))
	assert.Equal(t, `%a\\b%`, likePattern(`a\b`))
}
