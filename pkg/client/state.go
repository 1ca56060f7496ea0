package client

import (
	"time"

	"github.com/skybound-dev/ifconnect/pkg/wiretype"
)

// CacheEntry is one name's most recently delivered value and the time it
// was written. Timestamp is non-decreasing across successive deliveries
// for the same name.
type CacheEntry struct {
	Value     wiretype.Value
	Timestamp time.Time
}
