package charts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chartfusion-agent/application/ports"
)

// Stub renders nothing but answers like the chart backend would, so
// scripted runs work without network access.
type Stub struct {
	logger *zap.Logger
}

var _ ports.ChartService = (*Stub)(nil)

// NewStub creates an offline chart service
func NewStub(logger *zap.Logger) *Stub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stub{logger: logger}
}

// CreateChart fabricates an empty figure for the requested field selection
func (s *Stub) CreateChart(ctx context.Context, datasetID string, dimensions, measures []string) (*ports.ChartArtifact, error) {
	columns := append(append([]string{}, dimensions...), measures...)
	table, err := json.Marshal(map[string]interface{}{
		"columns": columns,
		"rows":    []interface{}{},
	})
	if err != nil {
		return nil, fmt.Errorf("encode stub table: %w", err)
	}

	artifact := &ports.ChartArtifact{
		RemoteID: "stub-" + uuid.New().String(),
		Table:    table,
	}
	s.logger.Debug("Chart stub rendered figure",
		zap.String("datasetId", datasetID),
		zap.String("remoteId", artifact.RemoteID),
	)
	return artifact, nil
}
