package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minga/internal/config"
	"minga/internal/logger"
)

// fakeDriver embeds the driver interface so only the methods the client uses need bodies.
type fakeDriver struct {
	neo4j.DriverWithContext
	session    *fakeSession
	sessions   int
	closeCalls int
	closeErr   error
}

func (d *fakeDriver) NewSession(ctx context.Context, cfg neo4j.SessionConfig) neo4j.SessionWithContext {
	d.sessions++
	return d.session
}

func (d *fakeDriver) Close(ctx context.Context) error {
	d.closeCalls++
	return d.closeErr
}

type fakeSession struct {
	neo4j.SessionWithContext
	result   *fakeResult
	runErr   error
	lastRun  string
	closed   int
	closeErr error
}

func (s *fakeSession) Run(ctx context.Context, cypher string, params map[string]any, _ ...func(*neo4j.TransactionConfig)) (neo4j.ResultWithContext, error) {
	s.lastRun = cypher
	if s.runErr != nil {
		return nil, s.runErr
	}
	return s.result, nil
}

func (s *fakeSession) Close(ctx context.Context) error {
	s.closed++
	return s.closeErr
}

type fakeResult struct {
	neo4j.ResultWithContext
	records    []*neo4j.Record
	collectErr error
}

func (r *fakeResult) Collect(ctx context.Context) ([]*neo4j.Record, error) {
	return r.records, r.collectErr
}

func newFakeGraph(session *fakeSession) (*GraphClient, *fakeDriver) {
	d := &fakeDriver{session: session}
	return newGraphWithDriver(d, "", logger.Nop()), d
}

func TestGraphClient_ExecuteQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("returns records and closes the session", func(t *testing.T) {
		rec := &neo4j.Record{Keys: []string{"n"}, Values: []any{int64(1)}}
		session := &fakeSession{result: &fakeResult{records: []*neo4j.Record{rec}}}
		client, driver := newFakeGraph(session)

		records, err := client.ExecuteQuery(ctx, "MATCH (n) RETURN n", map[string]any{"x": 1})

		require.NoError(t, err)
		assert.Len(t, records, 1)
		assert.Equal(t, "MATCH (n) RETURN n", session.lastRun)
		assert.Equal(t, 1, driver.sessions)
		assert.Equal(t, 1, session.closed)
	})

	t.Run("run failure still closes the session", func(t *testing.T) {
		cause := errors.New("connection refused")
		session := &fakeSession{runErr: cause}
		client, _ := newFakeGraph(session)

		records, err := client.ExecuteQuery(ctx, "RETURN 1", nil)

		assert.Nil(t, records)
		var qe *QueryError
		require.ErrorAs(t, err, &qe)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, 1, session.closed)
	})

	t.Run("collect failure still closes the session", func(t *testing.T) {
		session := &fakeSession{result: &fakeResult{collectErr: errors.New("stream broken")}}
		client, _ := newFakeGraph(session)

		_, err := client.ExecuteQuery(ctx, "RETURN 1", nil)

		assert.Error(t, err)
		assert.Equal(t, 1, session.closed)
	})

	t.Run("fresh session per call", func(t *testing.T) {
		session := &fakeSession{result: &fakeResult{}}
		client, driver := newFakeGraph(session)

		_, _ = client.ExecuteQuery(ctx, "RETURN 1", nil)
		_, _ = client.ExecuteQuery(ctx, "RETURN 2", nil)

		assert.Equal(t, 2, driver.sessions)
		assert.Equal(t, 2, session.closed)
	})
}

func TestGraphClient_HealthCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("up", func(t *testing.T) {
		session := &fakeSession{result: &fakeResult{}}
		client, _ := newFakeGraph(session)

		assert.True(t, client.HealthCheck(ctx))
		assert.Equal(t, graphHealthStatement, session.lastRun)
		assert.Equal(t, 1, session.closed)
	})

	t.Run("failure reports false and releases the session", func(t *testing.T) {
		session := &fakeSession{runErr: errors.New("unauthorized")}
		client, _ := newFakeGraph(session)

		assert.False(t, client.HealthCheck(ctx))
		assert.Equal(t, 1, session.closed)
	})

	t.Run("unreachable server reports false", func(t *testing.T) {
		client, err := NewGraph(config.Neo4jConfig{
			URI:                   "bolt://127.0.0.1:1",
			User:                  "neo4j",
			Password:              "password",
			MaxPoolSize:           5,
			AcquisitionTimeoutSec: 1,
		}, logger.Nop())
		require.NoError(t, err)
		defer client.Close(ctx)

		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		assert.False(t, client.HealthCheck(ctx))
	})
}

func TestGraphClient_CloseIsIdempotent(t *testing.T) {
	client, driver := newFakeGraph(&fakeSession{})

	assert.NoError(t, client.Close(context.Background()))
	assert.NoError(t, client.Close(context.Background()))
	assert.Equal(t, 1, driver.closeCalls)
}

func TestNewGraph_RequiresURI(t *testing.T) {
	client, err := NewGraph(config.Neo4jConfig{}, logger.Nop())
	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestRegistry_Close(t *testing.T) {
	session := &fakeSession{}
	graph, driver := newFakeGraph(session)
	driver.closeErr = errors.New("driver busy")

	reg := &Registry{Graph: graph}

	err := reg.Close(context.Background())
	assert.ErrorContains(t, err, "close neo4j: driver busy")

	assert.NoError(t, reg.Close(context.Background()))
	assert.Equal(t, 1, driver.closeCalls)
}

func TestOpen(t *testing.T) {
	cfg := &config.AppConfig{
		Postgres: config.PostgresConfig{Host: "127.0.0.1", Port: "1", User: "u", Name: "db", SSLMode: "disable"},
		Neo4j:    config.Neo4jConfig{URI: "bolt://127.0.0.1:1", User: "neo4j", Password: "x"},
	}

	reg, err := Open(cfg, logger.Nop())
	require.NoError(t, err)
	assert.NotNil(t, reg.Postgres)
	assert.NotNil(t, reg.Graph)
	assert.NoError(t, reg.Close(context.Background()))

	cfg.Neo4j.URI = ""
	reg, err = Open(cfg, logger.Nop())
	assert.Error(t, err)
	assert.Nil(t, reg)
}
