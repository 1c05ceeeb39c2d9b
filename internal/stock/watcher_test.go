package stock

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/alicebob/miniredis/v2"
	kafkax "github.com/ariefcatur/go-coffee-orders/internal/kafka"
	"github.com/ariefcatur/go-coffee-orders/internal/orders"
	"github.com/ariefcatur/go-coffee-orders/internal/orders/ordertest"
	"github.com/ariefcatur/go-coffee-orders/internal/redisx"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sync"
	"testing"
)

type fakePublisher struct {
	mu   sync.Mutex
	msgs []kafkago.Message
}

func (p *fakePublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, kafkago.Message{Key: key, Value: value, Headers: headers})
}

type failingCatalog struct{ orders.Catalog }

func (failingCatalog) StockLevels(context.Context, []int64) ([]orders.StockLevel, error) {
	return nil, errors.New("db down")
}

func newWatcher(t *testing.T, cat orders.Catalog) (*Watcher, *fakePublisher, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redisx.New(mr.Addr())
	t.Cleanup(func() { _ = rdb.Close() })
	pub := &fakePublisher{}
	return &Watcher{
		Catalog:     cat,
		Redis:       rdb,
		Publisher:   pub,
		Threshold:   100,
		ServiceName: "stock-watcher",
		Log:         zerolog.Nop(),
	}, pub, mr
}

func placedMessage(eventID string, consumed ...int64) kafkago.Message {
	p := orders.OrderPlacedPayload{OrderID: 9, DrinkID: 1, PaymentStatus: orders.PaymentPaid}
	for _, id := range consumed {
		p.Consumed = append(p.Consumed, orders.Consumption{IngredientID: id, Amount: 1})
	}
	env := orders.Envelope{
		EventID:      eventID,
		EventType:    orders.EventOrderPlaced,
		EventVersion: 1,
		TraceID:      "req-9",
		Payload:      kafkax.MustMarshal(p),
	}
	return kafkago.Message{Value: kafkax.MustMarshal(env)}
}

func lowPayloads(t *testing.T, pub *fakePublisher) []orders.StockLowPayload {
	t.Helper()
	var out []orders.StockLowPayload
	for _, m := range pub.msgs {
		var env orders.Envelope
		require.NoError(t, json.Unmarshal(m.Value, &env))
		assert.Equal(t, orders.EventStockLow, env.EventType)
		assert.Equal(t, "req-9", env.TraceID)
		p, err := kafkax.UnwrapPayload[orders.StockLowPayload](env.Payload)
		require.NoError(t, err)
		out = append(out, p)
	}
	return out
}

func TestHandleOrderPlaced_PublishesLowStock(t *testing.T) {
	store := ordertest.New().SetStock(1, 500).SetStock(2, 100).SetStock(3, 4.5)
	w, pub, _ := newWatcher(t, store)

	require.NoError(t, w.HandleOrderPlaced(context.Background(), placedMessage("e1", 1, 2, 3, 7)))

	got := lowPayloads(t, pub)
	require.Len(t, got, 2)
	assert.Equal(t, orders.StockLowPayload{IngredientID: 2, Quantity: 100, Threshold: 100, OrderID: 9}, got[0])
	assert.Equal(t, int64(3), got[1].IngredientID)
	assert.Equal(t, []byte("3"), pub.msgs[1].Key)
}

func TestHandleOrderPlaced_Dedup(t *testing.T) {
	store := ordertest.New().SetStock(1, 1)
	w, pub, mr := newWatcher(t, store)
	ctx := context.Background()

	require.NoError(t, w.HandleOrderPlaced(ctx, placedMessage("dup", 1)))
	require.NoError(t, w.HandleOrderPlaced(ctx, placedMessage("dup", 1)))

	assert.Len(t, pub.msgs, 1)
	assert.True(t, mr.Exists("dedup:stock-watcher:dup"))
}

func TestHandleOrderPlaced_FailureReleasesClaim(t *testing.T) {
	w, pub, mr := newWatcher(t, failingCatalog{})

	err := w.HandleOrderPlaced(context.Background(), placedMessage("e2", 1))
	require.Error(t, err)
	assert.Empty(t, pub.msgs)
	assert.False(t, mr.Exists("dedup:stock-watcher:e2"))
}

func TestHandleOrderPlaced_Ignores(t *testing.T) {
	w, pub, mr := newWatcher(t, ordertest.New().SetStock(1, 0))
	ctx := context.Background()

	other := orders.Envelope{EventID: "x", EventType: orders.EventStockLow, Payload: []byte(`{}`)}
	assert.NoError(t, w.HandleOrderPlaced(ctx, kafkago.Message{Value: kafkax.MustMarshal(other)}))
	assert.NoError(t, w.HandleOrderPlaced(ctx, kafkago.Message{Value: []byte("not json")}))
	assert.NoError(t, w.HandleOrderPlaced(ctx, placedMessage("empty")))

	assert.Empty(t, pub.msgs)
	assert.False(t, mr.Exists("dedup:stock-watcher:x"))
}
