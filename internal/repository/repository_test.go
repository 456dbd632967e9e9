package repository

import (
	"context"
	"errors"
)

// mockDB implements database.Database with per-call functions so each
// test controls exactly the rows and errors its query should see.
type mockDB struct {
	queryFunc    func(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error)
	queryOneFunc func(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error)
	executeFunc  func(ctx context.Context, query string, vars map[string]interface{}) error
}

func (m *mockDB) Connect(ctx context.Context) error { return nil }
func (m *mockDB) Close() error                      { return nil }
func (m *mockDB) Ping(ctx context.Context) error    { return nil }

func (m *mockDB) Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
	if m.queryFunc != nil {
		return m.queryFunc(ctx, query, vars)
	}
	return nil, errors.New("unexpected Query call")
}

func (m *mockDB) QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
	if m.queryOneFunc != nil {
		return m.queryOneFunc(ctx, query, vars)
	}
	return nil, errors.New("unexpected QueryOne call")
}

func (m *mockDB) Execute(ctx context.Context, query string, vars map[string]interface{}) error {
	if m.executeFunc != nil {
		return m.executeFunc(ctx, query, vars)
	}
	return errors.New("unexpected Execute call")
}

// wrapRows wraps record maps in the statement-result envelope SurrealDB
// returns for a query.
func wrapRows(rows ...interface{}) []interface{} {
	return []interface{}{
		map[string]interface{}{"status": "OK", "result": rows},
	}
}
