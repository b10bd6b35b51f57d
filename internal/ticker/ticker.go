package ticker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bindinc/agentdesk/internal/metrics"
	"github.com/bindinc/agentdesk/internal/websocket"
	"github.com/bindinc/agentdesk/internal/workstation"
	"github.com/rs/zerolog"
)

// Ticker periodically broadcasts the combined workstation snapshot so every
// connected client sees the same countdowns and wait times.
type Ticker struct {
	station  *workstation.Workstation
	hub      *websocket.Hub
	interval time.Duration
	logger   zerolog.Logger
}

// NewTicker creates a new Ticker
func NewTicker(station *workstation.Workstation, hub *websocket.Hub, interval time.Duration, logger zerolog.Logger) *Ticker {
	return &Ticker{
		station:  station,
		hub:      hub,
		interval: interval,
		logger:   logger,
	}
}

// Start begins broadcasting snapshots until the context is canceled
func (t *Ticker) Start(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.logger.Info().Dur("interval", t.interval).Msg("snapshot ticker started")

	for {
		select {
		case <-ctx.Done():
			t.logger.Info().Msg("snapshot ticker stopped")
			return

		case <-ticker.C:
			start := time.Now()
			snapshot := t.station.Snapshot()

			data, err := json.Marshal(snapshot)
			if err != nil {
				t.logger.Error().Err(err).Msg("failed to marshal workstation snapshot")
				continue
			}

			t.hub.Broadcast(data)
			metrics.Get().RecordSnapshotBroadcast(time.Since(start))
			metrics.Get().UpdateQueueDepth(len(snapshot.Queue.Entries))

			t.logger.Debug().
				Str("status", string(snapshot.AgentStatus.Current)).
				Int("queue_depth", len(snapshot.Queue.Entries)).
				Int("clients", t.hub.ClientCount()).
				Msg("broadcasted workstation snapshot")
		}
	}
}
