package orders

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

// fakeRow mengisi dest sesuai urutan kolom orderDetailsSelect.
type fakeRow []any

func (r fakeRow) Scan(dest ...any) error {
	for i, d := range dest {
		switch p := d.(type) {
		case *int64:
			*p = r[i].(int64)
		case *string:
			*p = r[i].(string)
		case *float64:
			*p = r[i].(float64)
		case *time.Time:
			*p = r[i].(time.Time)
		case **int64:
			if r[i] != nil {
				v := r[i].(int64)
				*p = &v
			}
		case **string:
			if r[i] != nil {
				v := r[i].(string)
				*p = &v
			}
		case **float64:
			if r[i] != nil {
				v := r[i].(float64)
				*p = &v
			}
		}
	}
	return nil
}

func orderRow(status string, ing ...any) fakeRow {
	row := fakeRow{int64(3), int64(1), status, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), "Latte", 3.5}
	if len(ing) == 0 {
		return append(row, nil, nil, nil, nil)
	}
	return append(row, ing...)
}

func TestScanOrderDetails(t *testing.T) {
	od, err := scanOrderDetails(orderRow("paid"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), od.OrderID)
	assert.Equal(t, PaymentPaid, od.PaymentStatus)
	assert.Equal(t, Drink{ID: 1, Name: "Latte", Price: 3.5}, od.Drink)
	assert.Nil(t, od.Ingredient)

	od, err = scanOrderDetails(orderRow("paid", int64(5), "Vanilla syrup", "ml", 15.0))
	require.NoError(t, err)
	require.NotNil(t, od.Ingredient)
	assert.Equal(t, Ingredient{ID: 5, Name: "Vanilla syrup", Unit: "ml", Portion: 15}, *od.Ingredient)
}

func TestScanOrderDetails_RejectsUnknownPaymentStatus(t *testing.T) {
	_, err := scanOrderDetails(orderRow("refunded"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"refunded"`)
}

func TestPaymentStatusValid(t *testing.T) {
	assert.True(t, PaymentPaid.Valid())
	assert.False(t, PaymentStatus("").Valid())
	assert.False(t, PaymentStatus("PAID").Valid())
}
