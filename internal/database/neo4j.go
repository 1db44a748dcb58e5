package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"minga/internal/config"
	"minga/internal/logger"
)

var newNeo4jDriver = neo4j.NewDriverWithContext

const graphHealthStatement = "RETURN 1 AS health"

// GraphClient owns the process-wide Neo4j driver.
// Sessions are short-lived: one per ExecuteQuery or HealthCheck call, closed before returning.
type GraphClient struct {
	driver   neo4j.DriverWithContext
	database string
	log      *logger.Logger

	closeOnce sync.Once
}

// NewGraph creates the driver with a bounded pool and acquisition timeout.
// The driver dials lazily, so an unreachable server is only noticed on first use.
func NewGraph(c config.Neo4jConfig, log *logger.Logger) (*GraphClient, error) {
	if c.URI == "" {
		return nil, fmt.Errorf("invalid neo4j config: uri is required")
	}

	auth := neo4j.BasicAuth(c.User, c.Password, "")
	driver, err := newNeo4jDriver(c.URI, auth, func(cfg *neo4j.Config) {
		if c.MaxPoolSize > 0 {
			cfg.MaxConnectionPoolSize = c.MaxPoolSize
		}
		if c.AcquisitionTimeoutSec > 0 {
			timeout := time.Duration(c.AcquisitionTimeoutSec) * time.Second
			cfg.ConnectionAcquisitionTimeout = timeout
			cfg.SocketConnectTimeout = timeout
		}
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: init driver: %w", err)
	}

	return newGraphWithDriver(driver, c.Database, log), nil
}

func newGraphWithDriver(driver neo4j.DriverWithContext, database string, log *logger.Logger) *GraphClient {
	if log == nil {
		log = logger.Nop()
	}
	return &GraphClient{
		driver:   driver,
		database: database,
		log:      log.With("client", "neo4j"),
	}
}

func (g *GraphClient) newSession(ctx context.Context) neo4j.SessionWithContext {
	return g.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: g.database})
}

// ExecuteQuery runs a Cypher statement in a fresh session and returns all records.
func (g *GraphClient) ExecuteQuery(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	session := g.newSession(ctx)
	defer g.closeSession(ctx, session)

	start := time.Now()
	res, err := session.Run(ctx, cypher, params)
	if err != nil {
		g.log.Error("error executing cypher", "statement", truncateStatement(cypher), "error", err)
		return nil, &QueryError{Statement: cypher, Err: err}
	}
	records, err := res.Collect(ctx)
	if err != nil {
		g.log.Error("error collecting cypher records", "statement", truncateStatement(cypher), "error", err)
		return nil, &QueryError{Statement: cypher, Err: err}
	}

	g.log.Info("executed cypher",
		"statement", truncateStatement(cypher),
		"duration_ms", time.Since(start).Milliseconds(),
		"records", len(records),
	)
	return records, nil
}

// HealthCheck runs a trivial query in its own session. It never returns an error.
func (g *GraphClient) HealthCheck(ctx context.Context) bool {
	if _, err := g.ExecuteQuery(ctx, graphHealthStatement, nil); err != nil {
		g.log.Warn("neo4j health check failed", "error", err)
		return false
	}
	return true
}

// Close shuts the driver down and releases its pool. Calling it again is a no-op.
func (g *GraphClient) Close(ctx context.Context) error {
	var err error
	g.closeOnce.Do(func() {
		err = g.driver.Close(ctx)
	})
	return err
}

func (g *GraphClient) closeSession(ctx context.Context, session neo4j.SessionWithContext) {
	if err := session.Close(ctx); err != nil {
		g.log.Warn("neo4j session close failed", "error", err)
	}
}
