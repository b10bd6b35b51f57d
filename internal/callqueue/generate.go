package callqueue

import (
	"time"

	"github.com/bindinc/agentdesk/internal/types"
	"github.com/google/uuid"
)

// mixKnownShare maps a queue mix name to the share of known callers
var mixKnownShare = map[string]float64{
	"mostly_known":     0.8,
	"mostly_anonymous": 0.2,
	"all_known":        1.0,
	"all_anonymous":    0.0,
	"balanced":         0.5,
}

// DebugGenerate replaces the queue with a synthetic set of waiting callers.
// The generation is deterministic: service numbers rotate through the
// catalog and wait times follow a fixed stride, so repeated runs with the
// same inputs produce the same queue shape.
func (c *Controller) DebugGenerate(size int, mix string, customers []types.Customer) types.QueueSnapshot {
	if size < 0 {
		size = 0
	}
	if size > 100 {
		size = 100
	}
	share, ok := mixKnownShare[mix]
	if !ok {
		share = mixKnownShare["balanced"]
	}

	services := types.ServiceNumberCodes()
	now := time.Now()

	entries := make([]types.QueueEntry, 0, size)
	for i := 0; i < size; i++ {
		entry := types.QueueEntry{
			ID:            "queue_" + uuid.New().String(),
			CallerKind:    types.CallerKindAnonymous,
			CustomerName:  "Anonieme Beller",
			ServiceNumber: services[i%len(services)],
			BaseWaitTime:  float64(30 + (i*41)%271),
			QueuedAt:      now,
			Priority:      1,
		}

		isKnown := len(customers) > 0 && float64(i%10)/10 < share
		if isKnown {
			customer := customers[i%len(customers)]
			entry.CallerKind = types.CallerKindKnown
			entry.CustomerID = customer.ID
			entry.CustomerName = customer.DisplayName()
		}
		entries = append(entries, entry)
	}

	c.mu.Lock()
	c.enabled = len(entries) > 0
	c.autoAdvance = true
	c.currentPosition = 0
	c.entries = entries
	c.mu.Unlock()

	c.logger.Info().Int("size", size).Str("mix", mix).Msg("debug queue generated")
	return c.Snapshot()
}
