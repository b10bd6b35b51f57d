package storage

import "github.com/bindinc/agentdesk/internal/types"

// Store defines the storage interface
type Store interface {
	SaveCallRecord(record types.CallRecord) error
	SaveAgentDailyStats(stats types.AgentDailyStats) error
	GetCallRecords(dateKey string) ([]types.CallRecord, error)
	GetCallRecordsByService(dateKey, serviceNumber string) ([]types.CallRecord, error)
	GetAgentDailyStats(agentID string) ([]types.AgentDailyStats, error)
	TruncateAll() error
}

// NoopStore is a no-op implementation when DynamoDB is disabled
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (s *NoopStore) SaveCallRecord(_ types.CallRecord) error           { return nil }
func (s *NoopStore) SaveAgentDailyStats(_ types.AgentDailyStats) error { return nil }
func (s *NoopStore) GetCallRecords(_ string) ([]types.CallRecord, error) {
	return nil, nil
}
func (s *NoopStore) GetCallRecordsByService(_, _ string) ([]types.CallRecord, error) {
	return nil, nil
}
func (s *NoopStore) GetAgentDailyStats(_ string) ([]types.AgentDailyStats, error) {
	return nil, nil
}
func (s *NoopStore) TruncateAll() error { return nil }
