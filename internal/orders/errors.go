package orders

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidOrder      = errors.New("invalid order")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrMissingInventory  = errors.New("missing inventory record")
)

// NotFoundError menandai drink / ingredient yang direferensikan order tapi tidak ada.
type NotFoundError struct {
	Entity string // "drink" | "ingredient"
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidOrder }

// StockError dipakai untuk dua kondisi: stok kurang, atau baris inventory tidak ada sama sekali.
type StockError struct {
	IngredientID int64    `json:"id_ingredient"`
	Required     float64  `json:"required"`
	Available    float64  `json:"available"`
	Missing      bool     `json:"missing,omitempty"`
	Uses         []string `json:"uses"` // recipe | extra | sugar
}

func (e *StockError) Error() string {
	if e.Missing {
		return fmt.Sprintf("ingredient %d has no inventory record (required %.2f)", e.IngredientID, e.Required)
	}
	return fmt.Sprintf("insufficient stock for ingredient %d: required %.2f, available %.2f",
		e.IngredientID, e.Required, e.Available)
}

func (e *StockError) Is(target error) bool {
	if e.Missing {
		return target == ErrMissingInventory
	}
	return target == ErrInsufficientStock
}
