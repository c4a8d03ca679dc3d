// Package analytics contiene los agregados de solo lectura para el tablero de inventario.
package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

// DashboardAggregator totales del inventario, con filtro opcional por nombre o número de parte.
//
// Fuente de datos: DashboardRepository (consultas read-only). Nunca muta el libro.
type DashboardAggregator struct {
	repo repository.DashboardRepository
	now  func() time.Time
}

// NewDashboardAggregator construye el caso de uso.
func NewDashboardAggregator(repo repository.DashboardRepository) *DashboardAggregator {
	return &DashboardAggregator{repo: repo, now: time.Now}
}

// Counts ejecuta las cinco consultas en paralelo. Un conjunto vacío devuelve ceros, no error.
func (uc *DashboardAggregator) Counts(ctx context.Context, search string) (*dto.InventoryCountsDTO, error) {
	search = strings.TrimSpace(search)
	today := uc.now()
	out := &dto.InventoryCountsDTO{Search: search}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.TotalItems, err = uc.repo.CountItems(gctx, search)
		return wrap("items", err)
	})
	g.Go(func() (err error) {
		out.TotalStockRecords, err = uc.repo.CountStockRecords(gctx, search)
		return wrap("stock_records", err)
	})
	g.Go(func() (err error) {
		out.TotalBins, err = uc.repo.CountBins(gctx, search)
		return wrap("bins", err)
	})
	g.Go(func() (err error) {
		out.TotalExpiredItems, err = uc.repo.CountExpiredItems(gctx, search, today)
		return wrap("expired_items", err)
	})
	g.Go(func() (err error) {
		out.CapacityUtilization, err = uc.repo.CapacityUtilization(gctx, search)
		return wrap("capacity", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func wrap(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: contar %s: %w", domain.ErrInternal, what, err)
}
