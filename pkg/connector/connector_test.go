package connector

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/David-Botos/housing-ingress/pkg/config"
)

func TestPingWithTimeout(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()
	require.NoError(t, PingWithTimeout(context.Background(), db, time.Second))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	err = PingWithTimeout(context.Background(), db, time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyConnectionSettings(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ApplyConnectionSettings(db, 1, 1, time.Minute)
	assert.Equal(t, 1, GetConnectionStats(db).MaxOpenConns)
}

func TestNewFromDB_RebindsForDriver(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	conn := NewFromDB(db, config.DriverPostgres, zaptest.NewLogger(t))
	assert.Equal(t, config.DriverPostgres, conn.Driver())
	assert.Same(t, db, conn.DB())

	mock.ExpectExec("DELETE FROM housing WHERE guid = $1").
		WithArgs("g-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	res, err := conn.ExecWithTimeout(context.Background(), "DELETE FROM housing WHERE guid = ?", time.Second, "g-1")
	require.NoError(t, err)
	affected, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	mock.ExpectQuery("SELECT COUNT(*) FROM housing WHERE zip_code = $1").
		WithArgs("02134").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	var count int
	require.NoError(t, conn.GetWithTimeout(context.Background(), &count,
		"SELECT COUNT(*) FROM housing WHERE zip_code = ?", time.Second, "02134"))
	assert.Equal(t, 3, count)

	mock.ExpectClose()
	require.NoError(t, conn.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewFromDB_KeepsQuestionMarksForMySQL(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	conn := NewFromDB(db, config.DriverMySQL, zaptest.NewLogger(t))

	mock.ExpectExec("UPDATE housing SET median_income = ? WHERE guid = ?").
		WithArgs(50000, "g-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	_, err = conn.ExecWithTimeout(context.Background(),
		"UPDATE housing SET median_income = ? WHERE guid = ?", time.Second, 50000, "g-1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteConnector(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Driver:           config.DriverSQLite,
		Path:             filepath.Join(t.TempDir(), "housing.db"),
		ConnectTimeout:   5 * time.Second,
		StatementTimeout: 5 * time.Second,
	}

	conn, err := NewConnectorFactory(cfg, zaptest.NewLogger(t)).CreateConnector(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, config.DriverSQLite, conn.Driver())
	assert.Equal(t, 1, GetConnectionStats(conn.DB()).MaxOpenConns)

	_, err = conn.ExecWithTimeout(context.Background(), "CREATE TABLE t (v INTEGER)", time.Second)
	require.NoError(t, err)
	_, err = conn.ExecWithTimeout(context.Background(), "INSERT INTO t (v) VALUES (?)", time.Second, 7)
	require.NoError(t, err)

	var v int
	require.NoError(t, conn.GetWithTimeout(context.Background(), &v, "SELECT v FROM t", time.Second))
	assert.Equal(t, 7, v)
}

func TestConnectorFactory_UnsupportedDriver(t *testing.T) {
	f := NewConnectorFactory(&config.DatabaseConfig{Driver: "oracle"}, zaptest.NewLogger(t))
	_, err := f.CreateConnector(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported driver")

	f = NewConnectorFactory(nil, zaptest.NewLogger(t))
	_, err = f.CreateConnector(context.Background())
	require.Error(t, err)
}
