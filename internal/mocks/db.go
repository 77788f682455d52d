package mocks

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
)

// NewDB returns a *sql.DB backed by a no-op driver. BeginTx, Commit, and
// Rollback succeed so store.RunInTransaction can be exercised with mocked
// stores; any actual query errors out.
func NewDB() *sql.DB {
	return sql.OpenDB(fakeConnector{})
}

type fakeConnector struct{}

func (fakeConnector) Connect(context.Context) (driver.Conn, error) { return &fakeConn{}, nil }
func (fakeConnector) Driver() driver.Driver                        { return fakeDriver{} }

type fakeDriver struct{}

func (fakeDriver) Open(string) (driver.Conn, error) { return &fakeConn{}, nil }

type fakeConn struct{}

func (*fakeConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("mock connection does not support queries")
}
func (*fakeConn) Close() error              { return nil }
func (*fakeConn) Begin() (driver.Tx, error) { return fakeTx{}, nil }

type fakeTx struct{}

func (fakeTx) Commit() error   { return nil }
func (fakeTx) Rollback() error { return nil }
