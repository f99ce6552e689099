package datasource

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Malowking/bigo/core/config"
	"github.com/Malowking/bigo/core/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hint = "SET useMultistageEngine=true;"

func newMockExecutor(t *testing.T, enableFallback bool) (*Executor, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewExecutor(db, config.ExecutorConfig{
		OptimizedHint:  hint,
		EnableFallback: enableFallback,
	}), mock
}

func salesRows() *sqlmock.Rows {
	return sqlmock.NewRowsWithColumnDefinition(
		sqlmock.NewColumn("region").OfType("VARCHAR", ""),
		sqlmock.NewColumn("total").OfType("DOUBLE", float64(0)),
	).
		AddRow("north", 120.5).
		AddRow("south", 80.0)
}

func TestExecutor_Fetch(t *testing.T) {
	query := "SELECT region, SUM(amount) AS total FROM sales GROUP BY region;"

	t.Run("优化执行成功时不回退", func(t *testing.T) {
		exec, mock := newMockExecutor(t, true)
		mock.ExpectQuery(hint + " " + query).WillReturnRows(salesRows())

		rs, err := exec.Fetch(context.Background(), query)
		require.NoError(t, err)
		assert.Equal(t, []string{"region", "total"}, rs.Columns)
		assert.Equal(t, []string{DtypeString, DtypeFloat}, rs.ColumnTypes)
		assert.Equal(t, 2, rs.Len())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("优化执行失败后以原始查询重试", func(t *testing.T) {
		exec, mock := newMockExecutor(t, true)
		mock.ExpectQuery(hint + " " + query).WillReturnError(stderrors.New("multistage engine unavailable"))
		mock.ExpectQuery(query).WillReturnRows(salesRows())

		rs, err := exec.Fetch(context.Background(), query)
		require.NoError(t, err)
		assert.Equal(t, 2, rs.Len())
		assert.Equal(t, "north", rs.Rows[0][0])
		assert.Equal(t, 120.5, rs.Rows[0][1])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("两级执行都失败返回执行错误", func(t *testing.T) {
		exec, mock := newMockExecutor(t, true)
		mock.ExpectQuery(hint + " " + query).WillReturnError(stderrors.New("multistage failed"))
		mock.ExpectQuery(query).WillReturnError(stderrors.New("table sales does not exist"))

		rs, err := exec.Fetch(context.Background(), query)
		require.Error(t, err)
		assert.Nil(t, rs)

		appErr := errors.GetAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrQueryExecution, appErr.Code)
		assert.Contains(t, appErr.Message, "table sales does not exist")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("关闭回退时只执行一次", func(t *testing.T) {
		exec, mock := newMockExecutor(t, false)
		mock.ExpectQuery(hint + " " + query).WillReturnError(stderrors.New("multistage failed"))

		_, err := exec.Fetch(context.Background(), query)
		require.Error(t, err)
		assert.Equal(t, errors.ErrQueryExecution, errors.GetAppError(err).Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("空查询", func(t *testing.T) {
		exec, _ := newMockExecutor(t, true)
		_, err := exec.Fetch(context.Background(), "  ")
		require.Error(t, err)
		assert.Equal(t, errors.ErrInvalidParameter, errors.GetAppError(err).Code)
	})
}

func TestExecutor_FetchConvertsDriverBytes(t *testing.T) {
	exec, mock := newMockExecutor(t, true)
	query := "SELECT orders, avg_amount FROM stats;"
	rows := sqlmock.NewRowsWithColumnDefinition(
		sqlmock.NewColumn("orders").OfType("BIGINT", int64(0)),
		sqlmock.NewColumn("avg_amount").OfType("DECIMAL", float64(0)),
	).AddRow([]byte("42"), []byte("12.75"))
	mock.ExpectQuery(hint + " " + query).WillReturnRows(rows)

	rs, err := exec.Fetch(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, int64(42), rs.Rows[0][0])
	assert.Equal(t, 12.75, rs.Rows[0][1])
	assert.Equal(t, []int{0, 1}, rs.NumericColumns())
}

func TestExecutor_Run(t *testing.T) {
	exec, mock := newMockExecutor(t, true)
	mock.ExpectExec("DELETE FROM staging WHERE tenantId='T1'").WillReturnResult(sqlmock.NewResult(0, 3))

	affected, err := exec.Run(context.Background(), "DELETE FROM staging WHERE tenantId='T1'")
	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpen_RequiresDriverAndDSN(t *testing.T) {
	_, err := Open(context.Background(), config.ExecutorConfig{})
	require.Error(t, err)
	assert.Equal(t, errors.ErrInvalidParameter, errors.GetAppError(err).Code)
}

func TestDriverName(t *testing.T) {
	assert.Equal(t, "postgres", driverName("postgresql"))
	assert.Equal(t, "postgres", driverName("postgres"))
	assert.Equal(t, "pgx", driverName("pgx"))
	assert.Equal(t, "mysql", driverName("MySQL"))
	assert.Equal(t, "sqlmock", driverName("sqlmock"))
}
