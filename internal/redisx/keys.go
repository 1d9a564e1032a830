package redisx

import "time"

const (
	// Pub/Sub channel carrying order-collection change signals.
	ChannelOrdersChanged = "orders:changed"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var TTLDedup = 48 * time.Hour
