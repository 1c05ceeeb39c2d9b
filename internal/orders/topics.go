package orders

import "strconv"

const (
	TopicOrderPlaced = "order.placed"
	TopicStockLow    = "inventory.low"
)

// Partition key = order_id, supaya semua event 1 order maintain urutan.
func PartitionKey(orderID int64) []byte { return []byte(strconv.FormatInt(orderID, 10)) }
