package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/backoffice-api/internal/application/inventory"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

var (
	_ inventory.TxRunner             = (*Ledger)(nil)
	_ repository.DashboardRepository = (*Ledger)(nil)
)

type ledgerState struct {
	bins   map[string]entity.StorageBin
	items  map[string]entity.Item
	stocks map[string]entity.StockRecord
	events map[string]entity.LocationEvent
}

func newLedgerState() *ledgerState {
	return &ledgerState{
		bins:   make(map[string]entity.StorageBin),
		items:  make(map[string]entity.Item),
		stocks: make(map[string]entity.StockRecord),
		events: make(map[string]entity.LocationEvent),
	}
}

func (s *ledgerState) clone() *ledgerState {
	c := newLedgerState()
	for k, v := range s.bins {
		c.bins[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.stocks {
		c.stocks[k] = v
	}
	for k, v := range s.events {
		c.events[k] = v
	}
	return c
}

// Ledger libro de inventario en memoria. Las transacciones se serializan con un mutex y trabajan sobre
// una copia del estado que solo se publica si fn termina sin error (Rollback = descartar la copia).
type Ledger struct {
	mu    sync.Mutex
	state *ledgerState
}

// NewLedger construye un libro vacío.
func NewLedger() *Ledger {
	return &Ledger{state: newLedgerState()}
}

// Run implementa inventory.TxRunner.
func (l *Ledger) Run(ctx context.Context, fn func(
	binRepo repository.StorageBinRepository,
	itemRepo repository.ItemRepository,
	stockRepo repository.StockRecordRepository,
	eventRepo repository.LocationEventRepository,
) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := l.state.clone()
	if err := fn(BinRepo{l: l, tx: tx}, ItemRepo{l: l, tx: tx}, stockRepo{tx: tx}, eventRepo{tx: tx}); err != nil {
		return err
	}
	l.state = tx
	return nil
}

// Bins repositorio de bins fuera de transacción.
func (l *Ledger) Bins() BinRepo { return BinRepo{l: l} }

// Items repositorio de ítems fuera de transacción.
func (l *Ledger) Items() ItemRepo { return ItemRepo{l: l} }

func (l *Ledger) read(tx *ledgerState, fn func(st *ledgerState) error) error {
	if tx != nil {
		return fn(tx)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(l.state)
}

// AddBin registra un bin (ID generado si viene vacío).
func (l *Ledger) AddBin(b entity.StorageBin) entity.StorageBin {
	l.mu.Lock()
	defer l.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	l.state.bins[b.ID] = b
	return b
}

// AddItem registra un ítem (ID generado si viene vacío).
func (l *Ledger) AddItem(i entity.Item) entity.Item {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	l.state.items[i.ID] = i
	return i
}

// AddStockRecord registra un registro de stock (ID generado si viene vacío).
func (l *Ledger) AddStockRecord(r entity.StockRecord) entity.StockRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	l.state.stocks[r.ID] = r
	return r
}

// Bin estado confirmado del bin.
func (l *Ledger) Bin(id string) (entity.StorageBin, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.state.bins[id]
	return b, ok
}

// Item estado confirmado del ítem.
func (l *Ledger) Item(id string) (entity.Item, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i, ok := l.state.items[id]
	return i, ok
}

// StockRecords registros confirmados ordenados por fecha de creación.
func (l *Ledger) StockRecords() []entity.StockRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]entity.StockRecord, 0, len(l.state.stocks))
	for _, r := range l.state.stocks {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Events eventos confirmados ordenados por fecha de creación.
func (l *Ledger) Events() []entity.LocationEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]entity.LocationEvent, 0, len(l.state.events))
	for _, e := range l.state.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// BinRepo implementa repository.StorageBinRepository.
type BinRepo struct {
	l  *Ledger
	tx *ledgerState
}

var _ repository.StorageBinRepository = BinRepo{}

// FindByLocation busca por (row, rack) sin distinguir mayúsculas.
func (r BinRepo) FindByLocation(_ context.Context, row, rack string) (*entity.StorageBin, error) {
	var found *entity.StorageBin
	err := r.l.read(r.tx, func(st *ledgerState) error {
		for _, b := range st.bins {
			if strings.EqualFold(b.Row, row) && strings.EqualFold(b.Rack, rack) {
				b := b
				found = &b
				return nil
			}
		}
		return fmt.Errorf("%w: %s-%s", domain.ErrLocationNotFound, row, rack)
	})
	return found, err
}

// GetForUpdate dentro de Run el mutex del libro ya serializa las transacciones.
func (r BinRepo) GetForUpdate(_ context.Context, id string) (*entity.StorageBin, error) {
	var found *entity.StorageBin
	err := r.l.read(r.tx, func(st *ledgerState) error {
		b, ok := st.bins[id]
		if !ok {
			return fmt.Errorf("%w: bin %s", domain.ErrLocationNotFound, id)
		}
		found = &b
		return nil
	})
	return found, err
}

// UpdateUsed fija el uso del bin.
func (r BinRepo) UpdateUsed(_ context.Context, id string, used int, now time.Time) error {
	return r.l.read(r.tx, func(st *ledgerState) error {
		b, ok := st.bins[id]
		if !ok {
			return fmt.Errorf("%w: bin %s", domain.ErrLocationNotFound, id)
		}
		b.Used = used
		b.UpdatedAt = now
		st.bins[id] = b
		return nil
	})
}

// ItemRepo implementa repository.ItemRepository.
type ItemRepo struct {
	l  *Ledger
	tx *ledgerState
}

var _ repository.ItemRepository = ItemRepo{}

// FindByName coincidencia exacta sin distinguir mayúsculas.
func (r ItemRepo) FindByName(_ context.Context, name string) (*entity.Item, error) {
	name = strings.TrimSpace(name)
	var found *entity.Item
	err := r.l.read(r.tx, func(st *ledgerState) error {
		matches := 0
		for _, it := range st.items {
			if name != "" && strings.EqualFold(strings.TrimSpace(it.Name), name) {
				it := it
				found = &it
				matches++
			}
		}
		switch {
		case matches == 0:
			return fmt.Errorf("%w: %q", domain.ErrItemNotFound, name)
		case matches > 1:
			return fmt.Errorf("%w: %q coincide con %d ítems", domain.ErrAmbiguousItem, name, matches)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// GetForUpdate devuelve el ítem.
func (r ItemRepo) GetForUpdate(_ context.Context, id string) (*entity.Item, error) {
	var found *entity.Item
	err := r.l.read(r.tx, func(st *ledgerState) error {
		it, ok := st.items[id]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrItemNotFound, id)
		}
		found = &it
		return nil
	})
	return found, err
}

// UpdateQuantity fija la cantidad total del ítem.
func (r ItemRepo) UpdateQuantity(_ context.Context, id string, quantity int, now time.Time) error {
	return r.l.read(r.tx, func(st *ledgerState) error {
		it, ok := st.items[id]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrItemNotFound, id)
		}
		it.Quantity = quantity
		it.UpdatedAt = now
		st.items[id] = it
		return nil
	})
}

type stockRepo struct {
	tx *ledgerState
}

var _ repository.StockRecordRepository = stockRepo{}

func (r stockRepo) GetOrCreateForUpdate(_ context.Context, itemID, binID, location string, now time.Time) (*entity.StockRecord, error) {
	for _, rec := range r.tx.stocks {
		if rec.ItemID == itemID && rec.StorageBinID != nil && *rec.StorageBinID == binID {
			rec := rec
			return &rec, nil
		}
	}
	bin := binID
	rec := entity.StockRecord{
		ID:           uuid.New().String(),
		ItemID:       itemID,
		StorageBinID: &bin,
		Location:     location,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.tx.stocks[rec.ID] = rec
	return &rec, nil
}

func (r stockRepo) Update(_ context.Context, rec *entity.StockRecord) error {
	if _, ok := r.tx.stocks[rec.ID]; !ok {
		return fmt.Errorf("%w: registro de stock %s", domain.ErrNotFound, rec.ID)
	}
	r.tx.stocks[rec.ID] = *rec
	return nil
}

func (r stockRepo) SumQuantityByBin(_ context.Context, binID string) (int, error) {
	total := 0
	for _, rec := range r.tx.stocks {
		if rec.StorageBinID != nil && *rec.StorageBinID == binID {
			total += rec.Quantity
		}
	}
	return total, nil
}

type eventRepo struct {
	tx *ledgerState
}

var _ repository.LocationEventRepository = eventRepo{}

func (r eventRepo) Create(_ context.Context, ev *entity.LocationEvent) error {
	if _, ok := r.tx.events[ev.ID]; ok {
		return fmt.Errorf("%w: evento %s ya existe", domain.ErrConflict, ev.ID)
	}
	r.tx.events[ev.ID] = *ev
	return nil
}

func (r eventRepo) MarkProcessed(_ context.Context, id string, applied int) error {
	ev, ok := r.tx.events[id]
	if !ok {
		return fmt.Errorf("%w: evento %s", domain.ErrNotFound, id)
	}
	if ev.Processed {
		return fmt.Errorf("%w: evento %s ya procesado", domain.ErrConflict, id)
	}
	ev.Processed = true
	ev.AppliedQuantity = applied
	r.tx.events[id] = ev
	return nil
}

// --- DashboardRepository ---

func matches(it entity.Item, search string) bool {
	if search == "" {
		return true
	}
	s := strings.ToLower(search)
	return strings.Contains(strings.ToLower(it.Name), s) || strings.Contains(strings.ToLower(it.PartNumber), s)
}

// CountItems ítems que coinciden con search.
func (l *Ledger) CountItems(_ context.Context, search string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var n int64
	for _, it := range l.state.items {
		if matches(it, search) {
			n++
		}
	}
	return n, nil
}

// CountStockRecords registros cuyo ítem coincide con search.
func (l *Ledger) CountStockRecords(_ context.Context, search string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var n int64
	for _, rec := range l.state.stocks {
		if it, ok := l.state.items[rec.ItemID]; ok && matches(it, search) {
			n++
		}
	}
	return n, nil
}

// countedBins bins incluidos en el tablero para search. Requiere mu tomado.
func (l *Ledger) countedBins(search string) []entity.StorageBin {
	if search == "" {
		out := make([]entity.StorageBin, 0, len(l.state.bins))
		for _, b := range l.state.bins {
			out = append(out, b)
		}
		return out
	}
	seen := make(map[string]bool)
	var out []entity.StorageBin
	for _, rec := range l.state.stocks {
		if rec.StorageBinID == nil || seen[*rec.StorageBinID] {
			continue
		}
		it, ok := l.state.items[rec.ItemID]
		if !ok || !matches(it, search) {
			continue
		}
		if b, ok := l.state.bins[*rec.StorageBinID]; ok {
			seen[b.ID] = true
			out = append(out, b)
		}
	}
	return out
}

// CountBins ver repository.DashboardRepository.
func (l *Ledger) CountBins(_ context.Context, search string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return int64(len(l.countedBins(search))), nil
}

// CountExpiredItems ítems coincidentes vencidos a la fecha today.
func (l *Ledger) CountExpiredItems(_ context.Context, search string, today time.Time) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var n int64
	for _, it := range l.state.items {
		if matches(it, search) && it.IsExpired(today) {
			n++
		}
	}
	return n, nil
}

// CapacityUtilization porcentaje de uso (2 decimales) de los bins contados.
func (l *Ledger) CapacityUtilization(_ context.Context, search string) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var used, capacity int64
	for _, b := range l.countedBins(search) {
		used += int64(b.Used)
		capacity += int64(b.Capacity)
	}
	if capacity == 0 {
		return decimal.Zero, nil
	}
	return decimal.NewFromInt(used).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(capacity)).Round(2), nil
}
