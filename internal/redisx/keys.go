package redisx

import "time"

const (
	// Token blacklist: blacklist:token:{token} -> user_id. TTL = sisa masa berlaku token.
	KeyBlacklistToken = "blacklist:token:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLDedup = 48 * time.Hour
)
