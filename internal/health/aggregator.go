// Package health reduces independent datastore probes into one status.
package health

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"minga/internal/logger"
	"minga/internal/model"
)

const msgCheckFailed = "health check query failed"

// Checker is a datastore that can report liveness. HealthCheck must not return an error;
// any fault is reported as false.
type Checker interface {
	HealthCheck(ctx context.Context) bool
}

// Target names one monitored datastore.
type Target struct {
	Name    string
	Checker Checker
}

// Aggregator probes every target concurrently on each call. Nothing is cached.
type Aggregator struct {
	targets []Target
	log     *logger.Logger
	now     func() time.Time
	up      *prometheus.GaugeVec
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithRegisterer exports a datastore_up{service} gauge updated on every check.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(a *Aggregator) {
		gauge := prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "datastore_up",
				Help: "Whether the last health probe of a datastore succeeded (1) or not (0).",
			},
			[]string{"service"},
		)
		if err := reg.Register(gauge); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				gauge = are.ExistingCollector.(*prometheus.GaugeVec)
			} else {
				a.log.Warn("datastore gauge not registered", "error", err)
				return
			}
		}
		a.up = gauge
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// NewAggregator builds an aggregator over the given targets. Names must be unique;
// a later target reusing a name is dropped.
func NewAggregator(targets []Target, log *logger.Logger, opts ...Option) *Aggregator {
	if log == nil {
		log = logger.Nop()
	}
	a := &Aggregator{
		log: log.With("component", "health"),
		now: time.Now,
	}
	a.targets = uniqueTargets(targets, a.log)
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// uniqueTargets keeps the first target for each name so every probed service appears in the report.
func uniqueTargets(targets []Target, log *logger.Logger) []Target {
	seen := make(map[string]struct{}, len(targets))
	out := make([]Target, 0, len(targets))
	for _, t := range targets {
		if _, dup := seen[t.Name]; dup {
			log.Warn("duplicate health target ignored", "service", t.Name)
			continue
		}
		seen[t.Name] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Check probes all targets and returns the reduced snapshot.
// The timestamp is taken before any probe starts.
func (a *Aggregator) Check(ctx context.Context) model.HealthStatus {
	ts := a.now().UTC()

	results := make([]model.ServiceHealth, len(a.targets))
	var g errgroup.Group
	for i, t := range a.targets {
		g.Go(func() error {
			results[i] = a.probe(ctx, t)
			return nil
		})
	}
	_ = g.Wait()

	services := make(map[string]model.ServiceHealth, len(a.targets))
	statuses := make([]model.ServiceStatus, 0, len(a.targets))
	for i, t := range a.targets {
		services[t.Name] = results[i]
		statuses = append(statuses, results[i].Status)
		if a.up != nil {
			v := 0.0
			if results[i].Status == model.ServiceUp {
				v = 1
			}
			a.up.WithLabelValues(t.Name).Set(v)
		}
	}

	status := Reduce(statuses)
	if status != model.StatusHealthy {
		a.log.Warn("datastores not healthy", "status", status, "services", services)
	}

	return model.HealthStatus{
		Status:    status,
		Timestamp: ts,
		Services:  services,
	}
}

// probe isolates one target: a panic degrades only that target.
func (a *Aggregator) probe(ctx context.Context, t Target) (res model.ServiceHealth) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("health check panicked", "service", t.Name, "panic", r)
			res = model.ServiceHealth{Status: model.ServiceDown, Message: fmt.Sprint(r)}
		}
	}()

	if t.Checker == nil {
		return model.ServiceHealth{Status: model.ServiceDown, Message: "not configured"}
	}
	if t.Checker.HealthCheck(ctx) {
		return model.ServiceHealth{Status: model.ServiceUp}
	}
	return model.ServiceHealth{Status: model.ServiceDown, Message: msgCheckFailed}
}

// Reduce maps per-service states to an overall status:
// unhealthy when nothing is up (including no services), healthy when everything is up, degraded otherwise.
func Reduce(statuses []model.ServiceStatus) model.OverallStatus {
	up := 0
	for _, s := range statuses {
		if s == model.ServiceUp {
			up++
		}
	}
	switch {
	case up == 0:
		return model.StatusUnhealthy
	case up == len(statuses):
		return model.StatusHealthy
	default:
		return model.StatusDegraded
	}
}
