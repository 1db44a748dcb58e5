package model

import "time"

// OverallStatus is the reduced status of every monitored datastore.
type OverallStatus string

const (
	StatusHealthy   OverallStatus = "healthy"
	StatusDegraded  OverallStatus = "degraded"
	StatusUnhealthy OverallStatus = "unhealthy"
)

// ServiceStatus is the state of a single datastore.
type ServiceStatus string

const (
	ServiceUp   ServiceStatus = "up"
	ServiceDown ServiceStatus = "down"
)

// ServiceHealth is the per-datastore part of a health snapshot.
type ServiceHealth struct {
	Status  ServiceStatus `json:"status"`
	Message string        `json:"message,omitempty"`
}

// HealthStatus is a computed snapshot; it is never stored or cached.
type HealthStatus struct {
	Status    OverallStatus            `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Services  map[string]ServiceHealth `json:"services"`
}
