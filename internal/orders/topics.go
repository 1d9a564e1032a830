package orders

// Single feed topic; the x-event-type header distinguishes event kinds.
const TopicOrderEvents = "order.events"

// Partition key = order_id, supaya semua event 1 order maintain urutan.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
