package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	domaininv "github.com/jhoicas/backoffice-api/internal/domain/inventory"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/jhoicas/backoffice-api/pkg/logger"
	"github.com/jhoicas/backoffice-api/pkg/metrics"
)

// LocationEventInput evento crudo tal como llega del lector IoT o del API.
type LocationEventInput struct {
	Location       string
	ItemName       string
	Event          string
	Quantity       *int   // nil = 1
	Timestamp      string // vacío = ahora
	IdempotencyKey string // opcional
}

// LocationEventResult resumen del evento aplicado.
type LocationEventResult struct {
	EventID           string           `json:"event_id"`
	ResolvedLocation  string           `json:"resolved_location"`
	ItemName          string           `json:"item_name"`
	Event             entity.EventKind `json:"event"`
	QuantityRequested int              `json:"quantity_requested"`
	QuantityApplied   int              `json:"quantity_applied"`
	BinUsedCapacity   int              `json:"bin_used_capacity"`
	BinCapacity       int              `json:"bin_capacity"`
	StockQuantity     int              `json:"stock_quantity"`
	Critical          bool             `json:"critical"`
	Timestamp         time.Time        `json:"timestamp"`
	ProcessedAt       time.Time        `json:"processed_at"`
	Replayed          bool             `json:"-"`
}

// ProcessorConfig parámetros del procesador.
type ProcessorConfig struct {
	MaxRetries int            // reintentos ante domain.ErrConflict
	Location   *time.Location // zona de timestamps sin offset
	Now        func() time.Time
}

// LocationEventProcessor valida un evento de ubicación y lo aplica de forma atómica al libro de inventario
// (StockRecord, Item y uso del StorageBin) con bloqueo de filas (SELECT FOR UPDATE).
type LocationEventProcessor struct {
	txRunner TxRunner
	binRepo  repository.StorageBinRepository
	itemRepo repository.ItemRepository
	idem     IdempotencyStore
	metrics  *metrics.Metrics
	log      *logger.Logger
	cfg      ProcessorConfig
}

// NewLocationEventProcessor construye el caso de uso. idem, m y log pueden ser nil.
func NewLocationEventProcessor(
	txRunner TxRunner,
	binRepo repository.StorageBinRepository,
	itemRepo repository.ItemRepository,
	idem IdempotencyStore,
	m *metrics.Metrics,
	log *logger.Logger,
	cfg ProcessorConfig,
) *LocationEventProcessor {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if log == nil {
		log = logger.Nop()
	}
	return &LocationEventProcessor{
		txRunner: txRunner,
		binRepo:  binRepo,
		itemRepo: itemRepo,
		idem:     idem,
		metrics:  m,
		log:      log.Component("location_events"),
		cfg:      cfg,
	}
}

// validated evento resuelto y validado, listo para aplicar.
type validated struct {
	bin       *entity.StorageBin
	item      *entity.Item
	kind      entity.EventKind
	quantity  int
	timestamp time.Time
	raw       string
}

// Process valida y aplica el evento. Con IdempotencyKey, un reenvío devuelve el resultado original.
func (p *LocationEventProcessor) Process(ctx context.Context, in LocationEventInput) (res *LocationEventResult, err error) {
	start := p.cfg.Now()
	var kind entity.EventKind
	defer func() {
		p.metrics.LocationEvent(string(kind), outcomeOf(res, err), p.cfg.Now().Sub(start))
	}()

	if in.IdempotencyKey != "" && p.idem != nil {
		replay, done, rerr := p.reserve(ctx, in.IdempotencyKey)
		if rerr != nil {
			return nil, rerr
		}
		if replay != nil {
			kind = replay.Event
			return replay, nil
		}
		defer func() { done(res, err) }()
	}

	v, err := p.validate(ctx, in)
	if err != nil {
		p.log.Info().Err(err).Str("location", in.Location).Str("item", in.ItemName).
			Str("event", in.Event).Msg("evento de ubicación rechazado")
		return nil, err
	}
	kind = v.kind

	for attempt := 0; ; attempt++ {
		res, err = p.apply(ctx, v)
		if err == nil || !errors.Is(err, domain.ErrConflict) || attempt >= p.cfg.MaxRetries {
			break
		}
		p.metrics.LocationEventRetry()
		p.log.Warn().Err(err).Int("attempt", attempt+1).Str("location", v.bin.LocationCode()).
			Msg("conflicto al aplicar evento, reintentando")
	}
	if err != nil {
		if !errors.Is(err, domain.ErrConflict) && !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrInvalidInput) {
			err = fmt.Errorf("%w: aplicar evento: %w", domain.ErrInternal, err)
		}
		p.log.Error().Err(err).Str("location", v.bin.LocationCode()).Str("item", v.item.Name).
			Str("event", string(v.kind)).Int("quantity", v.quantity).Msg("evento de ubicación revertido")
		return nil, err
	}
	p.log.Info().Str("event_id", res.EventID).Str("location", res.ResolvedLocation).Str("item", res.ItemName).
		Str("event", string(res.Event)).Int("applied", res.QuantityApplied).Int("bin_used", res.BinUsedCapacity).
		Msg("evento de ubicación aplicado")
	return res, nil
}

// reserve reserva la clave. Devuelve el resultado previo si ya se procesó, o una función para cerrar la reserva.
func (p *LocationEventProcessor) reserve(ctx context.Context, key string) (*LocationEventResult, func(*LocationEventResult, error), error) {
	ok, err := p.idem.Reserve(ctx, key)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reservar clave de idempotencia: %w", domain.ErrInternal, err)
	}
	if !ok {
		prev, err := p.idem.Get(ctx, key)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: leer clave de idempotencia: %w", domain.ErrInternal, err)
		}
		if prev == nil {
			return nil, nil, fmt.Errorf("%w: el evento con clave %q está en proceso", domain.ErrConflict, key)
		}
		prev.Replayed = true
		return prev, nil, nil
	}
	done := func(res *LocationEventResult, err error) {
		// El contexto de la petición puede estar cancelado; la reserva se cierra igual.
		bg := context.WithoutCancel(ctx)
		if err != nil {
			if rerr := p.idem.Release(bg, key); rerr != nil {
				p.log.Error().Err(rerr).Str("key", key).Msg("no se pudo liberar la clave de idempotencia")
			}
			return
		}
		if cerr := p.idem.Complete(bg, key, res); cerr != nil {
			p.log.Error().Err(cerr).Str("key", key).Msg("no se pudo guardar el resultado idempotente")
		}
	}
	return nil, done, nil
}

// validate aplica el pipeline de validación sin mutar nada: ubicación, ítem, evento, timestamp, cantidad.
func (p *LocationEventProcessor) validate(ctx context.Context, in LocationEventInput) (*validated, error) {
	loc, err := domaininv.ParseLocationCode(in.Location)
	if err != nil {
		return nil, err
	}
	bin, err := p.binRepo.FindByLocation(ctx, loc.Row, loc.Rack)
	if err != nil {
		return nil, err
	}
	item, err := p.itemRepo.FindByName(ctx, in.ItemName)
	if err != nil {
		return nil, err
	}
	kind, err := domaininv.NormalizeEventKind(in.Event)
	if err != nil {
		return nil, err
	}
	ts, err := domaininv.ParseEventTimestamp(in.Timestamp, p.cfg.Location, p.cfg.Now())
	if err != nil {
		return nil, err
	}
	qty, err := domaininv.ValidateQuantity(in.Quantity)
	if err != nil {
		return nil, err
	}
	return &validated{bin: bin, item: item, kind: kind, quantity: qty, timestamp: ts, raw: in.Location}, nil
}

// apply ejecuta la transacción. Orden de bloqueo fijo: bin, ítem, registro de stock.
func (p *LocationEventProcessor) apply(ctx context.Context, v *validated) (*LocationEventResult, error) {
	var res *LocationEventResult
	err := p.txRunner.Run(ctx, func(
		binRepo repository.StorageBinRepository,
		itemRepo repository.ItemRepository,
		stockRepo repository.StockRecordRepository,
		eventRepo repository.LocationEventRepository,
	) error {
		now := p.cfg.Now()

		bin, err := binRepo.GetForUpdate(ctx, v.bin.ID)
		if err != nil {
			return err
		}
		item, err := itemRepo.GetForUpdate(ctx, v.item.ID)
		if err != nil {
			return err
		}

		ev := &entity.LocationEvent{
			ID:           uuid.New().String(),
			StorageBinID: bin.ID,
			ItemID:       item.ID,
			RawLocation:  v.raw,
			Event:        v.kind,
			Quantity:     v.quantity,
			Timestamp:    v.timestamp,
			CreatedAt:    now,
		}
		if err := eventRepo.Create(ctx, ev); err != nil {
			return err
		}

		rec, err := stockRepo.GetOrCreateForUpdate(ctx, item.ID, bin.ID, bin.LocationCode(), now)
		if err != nil {
			return err
		}
		applied, err := domaininv.ApplyEvent(v.kind, rec, item, v.quantity)
		if err != nil {
			return err
		}
		rec.UpdatedAt = now
		if err := stockRepo.Update(ctx, rec); err != nil {
			return err
		}
		if err := itemRepo.UpdateQuantity(ctx, item.ID, item.Quantity, now); err != nil {
			return err
		}

		used, err := stockRepo.SumQuantityByBin(ctx, bin.ID)
		if err != nil {
			return err
		}
		if err := binRepo.UpdateUsed(ctx, bin.ID, used, now); err != nil {
			return err
		}
		if bin.Capacity > 0 && used > bin.Capacity {
			p.log.Warn().Str("bin", bin.BinID).Int("used", used).Int("capacity", bin.Capacity).
				Msg("bin por encima de su capacidad")
		}

		if err := eventRepo.MarkProcessed(ctx, ev.ID, applied); err != nil {
			return err
		}

		res = &LocationEventResult{
			EventID:           ev.ID,
			ResolvedLocation:  bin.LocationCode(),
			ItemName:          item.Name,
			Event:             v.kind,
			QuantityRequested: v.quantity,
			QuantityApplied:   applied,
			BinUsedCapacity:   used,
			BinCapacity:       bin.Capacity,
			StockQuantity:     rec.Quantity,
			Critical:          rec.Critical,
			Timestamp:         v.timestamp,
			ProcessedAt:       now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func outcomeOf(res *LocationEventResult, err error) string {
	switch {
	case err == nil && res != nil && res.Replayed:
		return "replayed"
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	}
	return "internal"
}
