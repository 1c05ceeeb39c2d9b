package orders

type PaymentStatus string

// Belum ada integrasi payment; setiap order yang tercatat langsung "paid".
const PaymentPaid PaymentStatus = "paid"

var knownPayment = map[PaymentStatus]bool{
	PaymentPaid: true,
}

func (s PaymentStatus) Valid() bool {
	return knownPayment[s]
}

// Sugar dihitung dalam sendok teh, maksimal 5 per order.
const (
	MinSugar = 0
	MaxSugar = 5
)
