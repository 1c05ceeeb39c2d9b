package httpx

import (
	"encoding/json"
	"errors"
	"github.com/ariefcatur/go-coffee-orders/internal/orders"
	"net/http"
)

type errorBody struct {
	Error  string             `json:"error"`
	Field  string             `json:"field,omitempty"`
	Entity string             `json:"entity,omitempty"`
	ID     int64              `json:"id,omitempty"`
	Stock  *orders.StockError `json:"stock,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor memetakan error domain ke HTTP status + body.
func statusFor(err error) (int, errorBody) {
	var (
		ve *orders.ValidationError
		nf *orders.NotFoundError
		se *orders.StockError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, errorBody{Error: ve.Error(), Field: ve.Field}
	case errors.As(err, &nf):
		return http.StatusNotFound, errorBody{Error: nf.Error(), Entity: nf.Entity, ID: nf.ID}
	case errors.As(err, &se):
		return http.StatusConflict, errorBody{Error: se.Error(), Stock: se}
	case errors.Is(err, orders.ErrInsufficientStock), errors.Is(err, orders.ErrMissingInventory):
		return http.StatusConflict, errorBody{Error: err.Error()}
	case errors.Is(err, orders.ErrNotFound):
		return http.StatusNotFound, errorBody{Error: "not found"}
	default:
		return http.StatusInternalServerError, errorBody{Error: "internal error"}
	}
}
