package mocks

import (
	"github.com/websteralycia/WNBA-Lineup-Lab/internal/logger"
	"github.com/websteralycia/WNBA-Lineup-Lab/internal/warehouse"
)

// MockWarehouse provides a static metrics source for local development,
// no ClickHouse server required.
type MockWarehouse struct {
	Metrics map[string]warehouse.Percentiles
}

// NewMockWarehouse creates a mock warehouse with the given fixed metrics
func NewMockWarehouse(metrics map[string]warehouse.Percentiles) *MockWarehouse {
	logger.Info("Using MOCK warehouse (static percentiles) for local development")

	if metrics == nil {
		metrics = make(map[string]warehouse.Percentiles)
	}
	return &MockWarehouse{Metrics: metrics}
}

// GetAllPercentiles returns the static metric set
func (m *MockWarehouse) GetAllPercentiles() (map[string]warehouse.Percentiles, error) {
	out := make(map[string]warehouse.Percentiles, len(m.Metrics))
	for k, v := range m.Metrics {
		out[k] = v
	}
	return out, nil
}

// SyncPercentiles applies the static metrics through the callback
func (m *MockWarehouse) SyncPercentiles(apply func(athleteID string, p warehouse.Percentiles) error) error {
	for id, p := range m.Metrics {
		if err := apply(id, p); err != nil {
			return err
		}
	}
	return nil
}

// Close is a no-op for mock
func (m *MockWarehouse) Close() error {
	return nil
}
