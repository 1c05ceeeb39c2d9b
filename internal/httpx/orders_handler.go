package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	kafkax "github.com/ariefcatur/go-coffee-orders/internal/kafka"
	"github.com/ariefcatur/go-coffee-orders/internal/orders"
	"github.com/ariefcatur/go-coffee-orders/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderIdempotentHit  = "Idempotent-Replay"
	HeaderMissingStock   = "X-Missing-Stock"

	idemPending = "pending"
)

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req orders.PlaceOrderInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json"})
		return
	}
	if err := req.Validate(); err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// Idempotency: claim key dulu (SET NX "pending"), isi dengan id_order setelah commit.
	var idemKey string
	if k := strings.TrimSpace(r.Header.Get(HeaderIdempotencyKey)); k != "" && h.Redis != nil {
		key := fmt.Sprintf(redisx.KeyIdemOrderCreate, k)
		claimed, err := h.Redis.SetNX(ctx, key, idemPending, redisx.TTLIdempotency).Result()
		switch {
		case err != nil:
			h.Log.Warn().Err(err).Msg("idempotency claim failed, continuing without it")
		case !claimed:
			h.replayOrder(ctx, w, r, key)
			return
		default:
			idemKey = key
		}
	}

	placed, err := h.Placer.PlaceOrder(ctx, req)
	if err != nil {
		if idemKey != "" {
			// request gagal -> key dilepas supaya client boleh retry dengan key yang sama
			_ = h.Redis.Del(context.WithoutCancel(ctx), idemKey).Err()
		}
		h.fail(w, r, err)
		return
	}
	orderID := placed.Order.OrderID

	if idemKey != "" {
		h.storeIdempotency(context.WithoutCancel(ctx), idemKey, orderID)
	}
	h.publishPlaced(r, req, placed)

	if len(placed.Warnings) > 0 {
		ids := make([]string, 0, len(placed.Warnings))
		for _, se := range placed.Warnings {
			ids = append(ids, strconv.FormatInt(se.IngredientID, 10))
		}
		w.Header().Set(HeaderMissingStock, strings.Join(ids, ","))
	}
	writeJSON(w, http.StatusOK, placed.Order)
}

// storeIdempotency: order sudah commit, jadi ctx request (bisa sudah timeout) tidak dipakai.
// Kalau gagal, key "pending" dihapus supaya retry tidak tertahan 409 selama TTL.
func (h *Handler) storeIdempotency(ctx context.Context, key string, orderID int64) {
	err := h.Redis.Set(ctx, key, orderID, redisx.TTLIdempotency).Err()
	if err == nil {
		return
	}
	h.Log.Warn().Err(err).Int64("order_id", orderID).Msg("idempotency store failed")
	if err := h.Redis.Del(ctx, key).Err(); err != nil {
		h.Log.Error().Err(err).Str("key", key).Msg("idempotency key stuck pending")
	}
}

func (h *Handler) replayOrder(ctx context.Context, w http.ResponseWriter, r *http.Request, key string) {
	val, err := h.Redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) || val == idemPending {
		writeJSON(w, http.StatusConflict, errorBody{Error: "request with this idempotency key is in progress"})
		return
	}
	if err != nil {
		h.fail(w, r, fmt.Errorf("idempotency lookup: %w", err))
		return
	}
	orderID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		h.fail(w, r, fmt.Errorf("idempotency value %q: %w", val, err))
		return
	}
	od, err := h.Catalog.OrderByID(ctx, orderID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set(HeaderIdempotentHit, "true")
	writeJSON(w, http.StatusOK, od)
}

func (h *Handler) publishPlaced(r *http.Request, in orders.PlaceOrderInput, p orders.Placement) {
	if h.Publisher == nil {
		return
	}
	orderID := p.Order.OrderID
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       middleware.GetReqID(r.Context()),
		CorrelationID: strconv.FormatInt(orderID, 10),
		Payload:       kafkax.MustMarshal(orders.NewOrderPlacedPayload(in, p)),
	}
	h.Publisher.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderPlaced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid order id", Field: "id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	od, err := h.Catalog.OrderByID(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, od)
}
