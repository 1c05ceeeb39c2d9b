package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderPlaced = "OrderPlaced"
	EventStockLow    = "StockLow"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "coffee-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // biasanya order_id
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload tipe per event ----

type OrderPlacedPayload struct {
	OrderID           int64         `json:"order_id"`
	DrinkID           int64         `json:"drink_id"`
	ExtraIngredientID *int64        `json:"extra_ingredient_id,omitempty"`
	SugarAmount       int           `json:"sugar_amount"`
	PaymentStatus     PaymentStatus `json:"payment_status"`
	Consumed          []Consumption `json:"consumed"`
	MissingStock      []int64       `json:"missing_stock,omitempty"` // ingredient tanpa baris inventory
}

type StockLowPayload struct {
	IngredientID int64   `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
	Threshold    float64 `json:"threshold"`
	OrderID      int64   `json:"order_id"` // order yang memicu pengecekan
}

func NewOrderPlacedPayload(in PlaceOrderInput, p Placement) OrderPlacedPayload {
	out := OrderPlacedPayload{
		OrderID:           p.Order.OrderID,
		DrinkID:           p.Order.DrinkID,
		ExtraIngredientID: in.ExtraIngredientID,
		SugarAmount:       in.SugarAmount,
		PaymentStatus:     p.Order.PaymentStatus,
		Consumed:          p.Consumed,
	}
	for _, w := range p.Warnings {
		out.MissingStock = append(out.MissingStock, w.IngredientID)
	}
	return out
}
