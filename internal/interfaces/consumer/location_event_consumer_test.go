package consumer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appaccess "github.com/jhoicas/backoffice-api/internal/application/access"
	"github.com/jhoicas/backoffice-api/internal/application/inventory"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/access"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/memory"
)

// fakeReader entrega los mensajes en orden y luego bloquea hasta que se cancela ctx.
type fakeReader struct {
	msgs   chan kafka.Message
	errs   chan error
	closed bool
}

func newFakeReader(msgs ...kafka.Message) *fakeReader {
	r := &fakeReader{msgs: make(chan kafka.Message, len(msgs)), errs: make(chan error, 1)}
	for _, m := range msgs {
		r.msgs <- m
	}
	return r
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case err := <-r.errs:
		return kafka.Message{}, err
	default:
	}
	select {
	case m := <-r.msgs:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *fakeReader) Close() error { r.closed = true; return nil }

type env struct {
	ledger   *memory.Ledger
	registry *appaccess.PermissionRegistry
	gate     *appaccess.AuthorizationGate
	proc     *inventory.LocationEventProcessor
}

func newEnv(t *testing.T) *env {
	t.Helper()
	registry, err := appaccess.NewPermissionRegistry(memory.NewPermissionRepository(), appaccess.DefaultPolicy{
		Page: "staff", Action: appaccess.PolicyDeny,
	})
	require.NoError(t, err)
	ledger := memory.NewLedger()
	ledger.AddBin(entity.StorageBin{BinID: "BIN-001", Row: "A1", Rack: "R02", Capacity: 100})
	ledger.AddItem(entity.Item{Name: "Widget"})
	return &env{
		ledger:   ledger,
		registry: registry,
		gate:     appaccess.NewAuthorizationGate(registry, nil, nil),
		proc: inventory.NewLocationEventProcessor(ledger, ledger.Bins(), ledger.Items(),
			memory.NewIdempotencyStore(time.Hour), nil, nil, inventory.ProcessorConfig{MaxRetries: 1}),
	}
}

func (e *env) allow(t *testing.T, role string) {
	t.Helper()
	_, _, err := e.registry.Upsert(context.Background(), access.KindAction, createLocationEvent, role)
	require.NoError(t, err)
}

func msg(offset int64, key, value string) kafka.Message {
	m := kafka.Message{Topic: "inventory.location-events", Partition: 0, Offset: offset, Value: []byte(value)}
	if key != "" {
		m.Key = []byte(key)
	}
	return m
}

func TestHandleMessage_Aplica(t *testing.T) {
	e := newEnv(t)
	e.allow(t, "operations_manager")
	c := NewLocationEventConsumer(newFakeReader(), e.proc, e.gate, "operations_manager", nil)

	err := c.handleMessage(context.Background(),
		msg(1, "", `{"location":"A1-R02","item_name":"Widget","event":"item_added","quantity":4}`))
	require.NoError(t, err)

	evs := e.ledger.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, 4, evs[0].AppliedQuantity)
}

func TestHandleMessage_RolDeServicioSinPermiso(t *testing.T) {
	e := newEnv(t)
	e.allow(t, "md")
	c := NewLocationEventConsumer(newFakeReader(), e.proc, e.gate, "operations_manager", nil)

	err := c.handleMessage(context.Background(),
		msg(1, "", `{"location":"A1-R02","item_name":"Widget","event":"item_added"}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	assert.Empty(t, e.ledger.Events())
}

func TestHandleMessage_JSONInvalido(t *testing.T) {
	e := newEnv(t)
	e.allow(t, "staff")
	c := NewLocationEventConsumer(newFakeReader(), e.proc, e.gate, "staff", nil)

	err := c.handleMessage(context.Background(), msg(1, "", `{no json`))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHandleMessage_ReenvioNoDuplica(t *testing.T) {
	e := newEnv(t)
	e.allow(t, "staff")
	c := NewLocationEventConsumer(newFakeReader(), e.proc, e.gate, "staff", nil)
	body := `{"location":"A1-R02","item_name":"Widget","event":"item_added","quantity":2}`

	require.NoError(t, c.handleMessage(context.Background(), msg(7, "lector-3:0042", body)))
	require.NoError(t, c.handleMessage(context.Background(), msg(9, "lector-3:0042", body)))

	assert.Len(t, e.ledger.Events(), 1)
	item, _ := e.ledger.Items().FindByName(context.Background(), "Widget")
	assert.Equal(t, 2, item.Quantity)
}

func TestIdempotencyKey(t *testing.T) {
	assert.Equal(t, "k1", idempotencyKey(msg(3, "k1", "")))
	assert.Equal(t, "inventory.location-events/0/3", idempotencyKey(msg(3, "", "")))
}

func TestRun_ProcesaYSeDetiene(t *testing.T) {
	e := newEnv(t)
	e.allow(t, "staff")
	reader := newFakeReader(
		msg(1, "", `{"location":"A1-R02","item_name":"Widget","event":"item_added","quantity":3}`),
		msg(2, "", `{"location":"Z9-R99","item_name":"Widget","event":"item_added"}`),
		msg(3, "", `{"location":"A1-R02","item_name":"Widget","event":"item_removed","quantity":1}`),
	)
	reader.errs <- errors.New("broker no disponible")
	c := NewLocationEventConsumer(reader, e.proc, e.gate, "staff", nil)
	c.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool { return len(e.ledger.Events()) == 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run no terminó tras cancelar el contexto")
	}
	item, _ := e.ledger.Items().FindByName(context.Background(), "Widget")
	assert.Equal(t, 2, item.Quantity)
}
