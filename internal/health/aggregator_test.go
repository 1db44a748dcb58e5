package health

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minga/internal/model"
)

type checkerFunc func(ctx context.Context) bool

func (f checkerFunc) HealthCheck(ctx context.Context) bool { return f(ctx) }

func constant(ok bool) Checker {
	return checkerFunc(func(context.Context) bool { return ok })
}

func TestReduce(t *testing.T) {
	up, down := model.ServiceUp, model.ServiceDown

	tests := []struct {
		name     string
		statuses []model.ServiceStatus
		want     model.OverallStatus
	}{
		{"up up", []model.ServiceStatus{up, up}, model.StatusHealthy},
		{"up down", []model.ServiceStatus{up, down}, model.StatusDegraded},
		{"down up", []model.ServiceStatus{down, up}, model.StatusDegraded},
		{"down down", []model.ServiceStatus{down, down}, model.StatusUnhealthy},
		{"three mixed", []model.ServiceStatus{down, up, down}, model.StatusDegraded},
		{"single up", []model.ServiceStatus{up}, model.StatusHealthy},
		{"no services", nil, model.StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reduce(tt.statuses))
		})
	}
}

func TestAggregator_Check(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		postgres bool
		neo4j    bool
		want     model.OverallStatus
	}{
		{"both up", true, true, model.StatusHealthy},
		{"postgres down", false, true, model.StatusDegraded},
		{"neo4j down", true, false, model.StatusDegraded},
		{"both down", false, false, model.StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewAggregator([]Target{
				{Name: "postgres", Checker: constant(tt.postgres)},
				{Name: "neo4j", Checker: constant(tt.neo4j)},
			}, nil, WithClock(func() time.Time { return fixed }))

			got := agg.Check(ctx)

			assert.Equal(t, tt.want, got.Status)
			assert.Equal(t, fixed, got.Timestamp)
			require.Len(t, got.Services, 2)
			for name, ok := range map[string]bool{"postgres": tt.postgres, "neo4j": tt.neo4j} {
				svc := got.Services[name]
				if ok {
					assert.Equal(t, model.ServiceUp, svc.Status)
					assert.Empty(t, svc.Message)
				} else {
					assert.Equal(t, model.ServiceDown, svc.Status)
					assert.Equal(t, msgCheckFailed, svc.Message)
				}
			}
		})
	}
}

func TestAggregator_PanicDegradesOnlyThatService(t *testing.T) {
	agg := NewAggregator([]Target{
		{Name: "postgres", Checker: checkerFunc(func(context.Context) bool { panic("pool exhausted") })},
		{Name: "neo4j", Checker: constant(true)},
	}, nil)

	got := agg.Check(context.Background())

	assert.Equal(t, model.StatusDegraded, got.Status)
	assert.Equal(t, model.ServiceHealth{Status: model.ServiceDown, Message: "pool exhausted"}, got.Services["postgres"])
	assert.Equal(t, model.ServiceUp, got.Services["neo4j"].Status)
}

func TestAggregator_ChecksRunConcurrently(t *testing.T) {
	started := make(chan struct{})

	// Each checker waits for the other to start; sequential evaluation would time out.
	waitFor := func(signal bool) Checker {
		return checkerFunc(func(context.Context) bool {
			if signal {
				close(started)
				return true
			}
			select {
			case <-started:
				return true
			case <-time.After(2 * time.Second):
				return false
			}
		})
	}

	agg := NewAggregator([]Target{
		{Name: "waiter", Checker: waitFor(false)},
		{Name: "signaller", Checker: waitFor(true)},
	}, nil)

	got := agg.Check(context.Background())

	assert.Equal(t, model.StatusHealthy, got.Status)
}

func TestAggregator_NilCheckerIsDown(t *testing.T) {
	agg := NewAggregator([]Target{{Name: "neo4j"}}, nil)

	got := agg.Check(context.Background())

	assert.Equal(t, model.StatusUnhealthy, got.Status)
	assert.Equal(t, "not configured", got.Services["neo4j"].Message)
}

func TestAggregator_DuplicateNamesKeepFirst(t *testing.T) {
	var secondCalled bool
	agg := NewAggregator([]Target{
		{Name: "postgres", Checker: constant(true)},
		{Name: "postgres", Checker: checkerFunc(func(context.Context) bool {
			secondCalled = true
			return false
		})},
		{Name: "neo4j", Checker: constant(false)},
	}, nil)

	got := agg.Check(context.Background())

	assert.False(t, secondCalled)
	require.Len(t, got.Services, 2)
	assert.Equal(t, model.ServiceUp, got.Services["postgres"].Status)
	assert.Equal(t, model.StatusDegraded, got.Status)

	statuses := make([]model.ServiceStatus, 0, len(got.Services))
	for _, s := range got.Services {
		statuses = append(statuses, s.Status)
	}
	assert.Equal(t, got.Status, Reduce(statuses))
}

func TestAggregator_Gauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	agg := NewAggregator([]Target{
		{Name: "postgres", Checker: constant(true)},
		{Name: "neo4j", Checker: constant(false)},
	}, nil, WithRegisterer(reg))

	agg.Check(context.Background())

	assert.Equal(t, 1.0, testutil.ToFloat64(agg.up.WithLabelValues("postgres")))
	assert.Equal(t, 0.0, testutil.ToFloat64(agg.up.WithLabelValues("neo4j")))

	// A second aggregator on the same registry reuses the collector.
	again := NewAggregator(nil, nil, WithRegisterer(reg))
	assert.Same(t, agg.up, again.up)
}
