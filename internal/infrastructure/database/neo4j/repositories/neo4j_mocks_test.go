package repositories

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	driver "github.com/turtacn/HSCode-Intelligence/internal/infrastructure/database/neo4j"
)

// fakeDriver satisfies driver.DriverInterface and feeds queued results to
// consecutive tx.Run calls while recording the cypher and parameters.
type fakeDriver struct {
	results []driver.Result
	runErr  error

	cyphers []string
	params  []map[string]any
}

func (d *fakeDriver) ExecuteRead(ctx context.Context, work driver.TransactionWork) (interface{}, error) {
	return work(&fakeTx{d: d})
}

func (d *fakeDriver) ExecuteWrite(ctx context.Context, work driver.TransactionWork) (interface{}, error) {
	return work(&fakeTx{d: d})
}

func (d *fakeDriver) HealthCheck(ctx context.Context) error { return nil }

func (d *fakeDriver) Close() error { return nil }

type fakeTx struct {
	d *fakeDriver
}

func (t *fakeTx) Run(ctx context.Context, cypher string, params map[string]any) (driver.Result, error) {
	t.d.cyphers = append(t.d.cyphers, cypher)
	t.d.params = append(t.d.params, params)
	if t.d.runErr != nil {
		return nil, t.d.runErr
	}
	if len(t.d.results) == 0 {
		return &fakeResult{}, nil
	}
	r := t.d.results[0]
	t.d.results = t.d.results[1:]
	return r, nil
}

// neo4jRecord keeps the test tables terse.
type neo4jRecord = neo4j.Record

type fakeResult struct {
	records []*neo4jRecord
	idx     int
}

func (r *fakeResult) Next(ctx context.Context) bool {
	return r.idx < len(r.records)
}

func (r *fakeResult) Record() *neo4j.Record {
	rec := r.records[r.idx]
	r.idx++
	return rec
}

func (r *fakeResult) Err() error { return nil }

func (r *fakeResult) Consume(ctx context.Context) (neo4j.ResultSummary, error) { return nil, nil }

func record(values ...any) *neo4jRecord {
	return &neo4jRecord{Values: values}
}

func singleCount(n int64) driver.Result {
	return &fakeResult{records: []*neo4jRecord{record(n)}}
}

//Personal.AI order the ending
