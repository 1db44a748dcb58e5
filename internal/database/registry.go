package database

import (
	"context"
	"errors"
	"fmt"

	"minga/internal/config"
	"minga/internal/logger"
)

// Registry holds the single connection resource for each datastore.
// It is built once at process start and handed to repositories and the health aggregator.
type Registry struct {
	Postgres *PostgresClient
	Graph    *GraphClient
}

// Open constructs both datastore clients from static configuration.
func Open(cfg *config.AppConfig, log *logger.Logger) (*Registry, error) {
	pg, err := NewPostgres(cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	graph, err := NewGraph(cfg.Neo4j, log)
	if err != nil {
		_ = pg.Close()
		return nil, fmt.Errorf("neo4j: %w", err)
	}

	return &Registry{Postgres: pg, Graph: graph}, nil
}

// Close releases every pooled connection. Errors from both clients are joined.
func (r *Registry) Close(ctx context.Context) error {
	var errs []error
	if r.Postgres != nil {
		if err := r.Postgres.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close postgres: %w", err))
		}
	}
	if r.Graph != nil {
		if err := r.Graph.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close neo4j: %w", err))
		}
	}
	return errors.Join(errs...)
}
