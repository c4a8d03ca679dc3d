// Package consumer ingiere eventos de ubicación IoT desde Kafka con el mismo procesador que el API HTTP.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/inventory"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/access"
	"github.com/jhoicas/backoffice-api/pkg/config"
	"github.com/jhoicas/backoffice-api/pkg/logger"
)

// createLocationEvent acción que debe tener el rol de servicio del consumidor.
const createLocationEvent = "create_location_event"

// MessageReader lo implementa *kafka.Reader.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type processor interface {
	Process(ctx context.Context, in inventory.LocationEventInput) (*inventory.LocationEventResult, error)
}

type authorizer interface {
	Authorize(ctx context.Context, role string, res access.Resource) error
}

// NewReader lector de grupo; los offsets se confirman automáticamente tras ReadMessage.
func NewReader(cfg config.KafkaConfig) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        cfg.GroupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
	})
}

// LocationEventConsumer lee mensajes JSON (mismo cuerpo que POST /api/inventory/location-events)
// y los aplica actuando con el rol de servicio configurado.
type LocationEventConsumer struct {
	reader      MessageReader
	proc        processor
	gate        authorizer
	serviceRole string
	log         *logger.Logger
	backoff     time.Duration
}

// NewLocationEventConsumer construye el consumidor. log puede ser nil.
func NewLocationEventConsumer(reader MessageReader, proc processor, gate authorizer, serviceRole string, log *logger.Logger) *LocationEventConsumer {
	if log == nil {
		log = logger.Nop()
	}
	return &LocationEventConsumer{
		reader:      reader,
		proc:        proc,
		gate:        gate,
		serviceRole: serviceRole,
		log:         log.Component("kafka_consumer"),
		backoff:     time.Second,
	}
}

// Run consume hasta que ctx se cancela. Un mensaje que falla se registra y se descarta
// (su offset se confirma igual); los reenvíos se detectan por la clave de idempotencia.
func (c *LocationEventConsumer) Run(ctx context.Context) error {
	c.log.Info().Str("role", c.serviceRole).Msg("consumidor de eventos de ubicación iniciado")
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.log.Info().Msg("consumidor de eventos de ubicación detenido")
				return nil
			}
			c.log.Error().Err(err).Msg("leer mensaje de kafka")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.backoff):
			}
			continue
		}
		if err := c.handleMessage(ctx, msg); err != nil {
			ev := c.log.Error()
			if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrNotFound) {
				ev = c.log.Warn()
			}
			ev.Err(err).Str("topic", msg.Topic).Int("partition", msg.Partition).Int64("offset", msg.Offset).
				Msg("evento de ubicación descartado")
		}
	}
}

func (c *LocationEventConsumer) handleMessage(ctx context.Context, msg kafka.Message) error {
	if err := c.gate.Authorize(ctx, c.serviceRole, access.Action(createLocationEvent)); err != nil {
		return err
	}
	var in dto.LocationEventRequest
	if err := json.Unmarshal(msg.Value, &in); err != nil {
		return fmt.Errorf("%w: mensaje no es JSON válido: %v", domain.ErrInvalidInput, err)
	}
	res, err := c.proc.Process(ctx, inventory.LocationEventInput{
		Location:       in.Location,
		ItemName:       in.ItemName,
		Event:          in.Event,
		Quantity:       in.Quantity,
		Timestamp:      in.Timestamp,
		IdempotencyKey: idempotencyKey(msg),
	})
	if err != nil {
		return err
	}
	c.log.Debug().Str("event_id", res.EventID).Bool("replayed", res.Replayed).Int64("offset", msg.Offset).
		Msg("mensaje aplicado")
	return nil
}

// idempotencyKey clave del mensaje; sin clave, la posición en el topic identifica el reenvío.
func idempotencyKey(msg kafka.Message) string {
	if len(msg.Key) > 0 {
		return string(msg.Key)
	}
	return fmt.Sprintf("%s/%d/%d", msg.Topic, msg.Partition, msg.Offset)
}
