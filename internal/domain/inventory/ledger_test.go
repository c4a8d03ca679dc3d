package inventory_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/inventory"
)

func TestApplyEvent_EscenarioWidget(t *testing.T) {
	rec := &entity.StockRecord{}
	item := &entity.Item{Name: "Widget"}

	applied, err := inventory.ApplyEvent(entity.EventItemAdded, rec, item, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, applied)
	assert.Equal(t, 5, rec.Quantity)
	assert.Equal(t, 5, item.Quantity)
	assert.False(t, rec.Critical)

	applied, err = inventory.ApplyEvent(entity.EventItemRemoved, rec, item, 8)
	require.NoError(t, err)
	assert.Equal(t, 5, applied, "la salida se recorta a lo disponible")
	assert.Equal(t, 0, rec.Quantity)
	assert.Equal(t, 0, item.Quantity)
	assert.True(t, rec.Critical)
}

func TestApplyEvent_ItemConOtrasUbicaciones(t *testing.T) {
	// El ítem tiene existencias en otro bin: la salida solo descuenta lo retirado de este registro.
	rec := &entity.StockRecord{Quantity: 2}
	item := &entity.Item{Quantity: 10}

	applied, err := inventory.ApplyEvent(entity.EventItemRemoved, rec, item, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, applied)
	assert.Equal(t, 8, item.Quantity)
	assert.True(t, rec.Critical)
}

func TestApplyEvent_EntradaLimpiaCritico(t *testing.T) {
	rec := &entity.StockRecord{Critical: true}
	item := &entity.Item{}
	_, err := inventory.ApplyEvent(entity.EventItemAdded, rec, item, 1)
	require.NoError(t, err)
	assert.False(t, rec.Critical)
}

func TestApplyEvent_SecuenciasNuncaNegativas(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for run := 0; run < 200; run++ {
		rec := &entity.StockRecord{}
		item := &entity.Item{Quantity: rng.Intn(3)}
		for step := 0; step < 50; step++ {
			kind := entity.EventItemAdded
			if rng.Intn(2) == 0 {
				kind = entity.EventItemRemoved
			}
			before := rec.Quantity
			applied, err := inventory.ApplyEvent(kind, rec, item, 1+rng.Intn(10))
			require.NoError(t, err)
			require.GreaterOrEqual(t, rec.Quantity, 0)
			require.GreaterOrEqual(t, item.Quantity, 0)
			if kind == entity.EventItemRemoved {
				require.LessOrEqual(t, applied, before)
				require.Equal(t, before-applied, rec.Quantity)
			}
		}
	}
}

func TestBinUsage(t *testing.T) {
	a, b := "bin-a", "bin-b"
	records := []entity.StockRecord{
		{StorageBinID: &a, Quantity: 3},
		{StorageBinID: &a, Quantity: 4},
		{StorageBinID: &b, Quantity: 100},
		{StorageBinID: nil, Quantity: 50},
	}
	assert.Equal(t, 7, inventory.BinUsage(records, a))
	assert.Equal(t, 0, inventory.BinUsage(nil, a))
}
