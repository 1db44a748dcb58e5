package service

import (
	"context"
	"fmt"

	"minga/internal/model"
)

// HealthAggregator produces a fresh health snapshot.
type HealthAggregator interface {
	Check(ctx context.Context) model.HealthStatus
}

// HealthService is the seam between transport and the datastore probes.
type HealthService interface {
	Check(ctx context.Context) (model.HealthStatus, error)
}

type healthService struct {
	agg HealthAggregator
}

// NewHealthService constructs a new HealthService.
func NewHealthService(agg HealthAggregator) HealthService {
	return &healthService{agg: agg}
}

// Check delegates to the aggregator. A panic escaping it is returned as an error.
func (s *healthService) Check(ctx context.Context) (status model.HealthStatus, err error) {
	defer func() {
		if r := recover(); r != nil {
			status = model.HealthStatus{}
			err = fmt.Errorf("health check: %v", r)
		}
	}()
	return s.agg.Check(ctx), nil
}
