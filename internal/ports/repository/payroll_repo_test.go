package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Minimal database/sql/driver stub recording the statement flow, so the
// transactional contract can be checked without a running Postgres.

type stubConn struct {
	ops      []string
	failOn   string
	notFound bool
}

type stubConnector struct{ conn *stubConn }

func (c stubConnector) Connect(context.Context) (driver.Conn, error) { return c.conn, nil }
func (c stubConnector) Driver() driver.Driver                        { return stubDriver{} }

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("use the connector")
}

func (c *stubConn) Prepare(query string) (driver.Stmt, error) {
	return &stubStmt{conn: c, query: query}, nil
}

func (c *stubConn) Close() error { return nil }

func (c *stubConn) Begin() (driver.Tx, error) {
	c.ops = append(c.ops, "begin")
	return &stubTx{conn: c}, nil
}

type stubStmt struct {
	conn  *stubConn
	query string
}

func (s *stubStmt) Close() error  { return nil }
func (s *stubStmt) NumInput() int { return -1 }

func (s *stubStmt) Exec([]driver.Value) (driver.Result, error) {
	if s.conn.failOn != "" && strings.Contains(s.query, s.conn.failOn) {
		return nil, fmt.Errorf("statement failed: %s", s.conn.failOn)
	}
	s.conn.ops = append(s.conn.ops, "exec "+tableOf(s.query))
	if s.conn.notFound && strings.Contains(s.query, "payroll_periods") {
		return driver.RowsAffected(0), nil
	}
	return driver.RowsAffected(1), nil
}

func (s *stubStmt) Query([]driver.Value) (driver.Rows, error) {
	return nil, errors.New("query not supported")
}

type stubTx struct{ conn *stubConn }

func (t *stubTx) Commit() error {
	t.conn.ops = append(t.conn.ops, "commit")
	return nil
}

func (t *stubTx) Rollback() error {
	t.conn.ops = append(t.conn.ops, "rollback")
	return nil
}

func tableOf(query string) string {
	switch {
	case strings.Contains(query, "payroll_confirmations"):
		return "payroll_confirmations"
	case strings.Contains(query, "payroll_periods"):
		return "payroll_periods"
	default:
		return "?"
	}
}

func newStubRepo(conn *stubConn) *PostgresPayrollRepository {
	return &PostgresPayrollRepository{DB: sql.OpenDB(stubConnector{conn: conn})}
}

func TestDeletePeriodCommitsBothDeletes(t *testing.T) {
	conn := &stubConn{}
	repo := newStubRepo(conn)

	err := repo.DeletePeriod(context.Background(), "2026-03-01_2026-03-15")

	require.NoError(t, err)
	assert.Equal(t, []string{"begin", "exec payroll_confirmations", "exec payroll_periods", "commit"}, conn.ops)
}

func TestDeletePeriodRollsBackWhenPeriodDeleteFails(t *testing.T) {
	conn := &stubConn{failOn: "payroll_periods"}
	repo := newStubRepo(conn)

	err := repo.DeletePeriod(context.Background(), "2026-03-01_2026-03-15")

	require.Error(t, err)
	// The confirmations delete ran inside the transaction and must be undone.
	assert.Equal(t, []string{"begin", "exec payroll_confirmations", "rollback"}, conn.ops)
}

func TestDeletePeriodUnknownIDRollsBack(t *testing.T) {
	conn := &stubConn{notFound: true}
	repo := newStubRepo(conn)

	err := repo.DeletePeriod(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotContains(t, conn.ops, "commit")
	assert.Contains(t, conn.ops, "rollback")
}
