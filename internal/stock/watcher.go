// Package stock memantau stok setelah order: consume order.placed, publish inventory.low.
package stock

import (
	"context"
	"encoding/json"
	"fmt"
	kafkax "github.com/ariefcatur/go-coffee-orders/internal/kafka"
	"github.com/ariefcatur/go-coffee-orders/internal/orders"
	"github.com/ariefcatur/go-coffee-orders/internal/redisx"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
	"strconv"
	"time"
)

type Watcher struct {
	Catalog     orders.Catalog
	Redis       *redis.Client
	Publisher   kafkax.Publisher // topic inventory.low
	Threshold   float64          // stok <= threshold dianggap low
	ServiceName string
	Log         zerolog.Logger
}

// HandleOrderPlaced dipasang sebagai handler consumer.
func (s *Watcher) HandleOrderPlaced(ctx context.Context, m kafkago.Message) error {
	// 1) decode envelope; pesan rusak di-skip supaya partisi tidak macet
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		s.Log.Error().Err(err).Int64("offset", m.Offset).Msg("skip malformed envelope")
		return nil
	}
	if env.EventType != orders.EventOrderPlaced {
		return nil
	}
	p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
	if err != nil {
		s.Log.Error().Err(err).Str("event_id", env.EventID).Msg("skip malformed payload")
		return nil
	}

	// 2) dedup via Redis (event_id), claim atomik
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	claimed, err := redisx.Claim(ctx, s.Redis, dkey, redisx.TTLDedup)
	if err != nil {
		return fmt.Errorf("dedup claim: %w", err)
	}
	if !claimed {
		s.Log.Debug().Str("event_id", env.EventID).Msg("duplicate event")
		return nil
	}

	if err := s.check(ctx, p, env.TraceID); err != nil {
		// lepas claim, pesan akan diproses ulang
		_ = s.Redis.Del(context.WithoutCancel(ctx), dkey).Err()
		return err
	}
	return nil
}

func (s *Watcher) check(ctx context.Context, p orders.OrderPlacedPayload, trace string) error {
	if len(p.Consumed) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(p.Consumed))
	for _, c := range p.Consumed {
		ids = append(ids, c.IngredientID)
	}
	levels, err := s.Catalog.StockLevels(ctx, ids)
	if err != nil {
		return fmt.Errorf("stock levels: %w", err)
	}
	for _, l := range levels {
		if l.Quantity > s.Threshold {
			continue
		}
		s.Log.Warn().Int64("ingredient_id", l.IngredientID).Float64("quantity", l.Quantity).
			Int64("order_id", p.OrderID).Msg("stock low")
		s.publishLow(p.OrderID, l, trace)
	}
	return nil
}

func (s *Watcher) publishLow(orderID int64, l orders.StockLevel, trace string) {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventStockLow,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       trace,
		CorrelationID: strconv.FormatInt(orderID, 10),
		Payload: kafkax.MustMarshal(orders.StockLowPayload{
			IngredientID: l.IngredientID, Quantity: l.Quantity, Threshold: s.Threshold, OrderID: orderID,
		}),
	}
	s.Publisher.Publish(orders.PartitionKey(l.IngredientID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventStockLow)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
