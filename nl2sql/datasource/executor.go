package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Malowking/bigo/core/config"
	"github.com/Malowking/bigo/core/errors"
	"github.com/Malowking/bigo/internal/observability"
	"github.com/gogf/gf/v2/frame/g"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

// Executor OLAP 查询执行器
// 先带优化提示执行，失败后回退为原始查询再执行一次
type Executor struct {
	db   *sql.DB
	conf config.ExecutorConfig
}

// driverName 配置中的驱动名映射到 database/sql 注册名
func driverName(driver string) string {
	switch strings.ToLower(driver) {
	case "postgres", "postgresql", "pq":
		return "postgres" // lib/pq
	case "pgx":
		return "pgx"
	case "mysql":
		return "mysql"
	default:
		return driver
	}
}

// Open 按配置打开连接池并测试连通性
func Open(ctx context.Context, conf config.ExecutorConfig) (*Executor, error) {
	if conf.Driver == "" || conf.DSN == "" {
		return nil, errors.New(errors.ErrInvalidParameter, "olap.driver and olap.dsn are required")
	}

	db, err := sql.Open(driverName(conf.Driver), conf.DSN)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabaseInit, err, "open olap connection failed")
	}

	if conf.MaxOpenConns > 0 {
		db.SetMaxOpenConns(conf.MaxOpenConns)
	}
	if conf.MaxIdleConns > 0 {
		db.SetMaxIdleConns(conf.MaxIdleConns)
	}
	if conf.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(conf.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(errors.ErrDatabaseInit, err, "ping olap database failed")
	}

	g.Log().Infof(ctx, "OLAP executor connected - Driver: %s, MaxOpen: %d, MaxIdle: %d, Fallback: %v",
		conf.Driver, conf.MaxOpenConns, conf.MaxIdleConns, conf.EnableFallback)

	return NewExecutor(db, conf), nil
}

// NewExecutor 使用已有连接池创建执行器
func NewExecutor(db *sql.DB, conf config.ExecutorConfig) *Executor {
	return &Executor{db: db, conf: conf}
}

// Fetch 执行只读查询
// 每次尝试都使用独立连接，结束后归还
func (e *Executor) Fetch(ctx context.Context, query string) (*ResultSet, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New(errors.ErrInvalidParameter, "query is empty")
	}

	if e.conf.OptimizedHint == "" {
		rs, err := e.fetchOnce(ctx, query)
		if err != nil {
			return nil, errors.Wrap(errors.ErrQueryExecution, err, "query execution failed")
		}
		return rs, nil
	}

	rs, err := e.fetchOnce(ctx, e.conf.OptimizedHint+" "+query)
	if err == nil {
		return rs, nil
	}
	if !e.conf.EnableFallback {
		return nil, errors.Wrap(errors.ErrQueryExecution, err, "optimized query execution failed")
	}

	g.Log().Warningf(ctx, "[Executor] optimized execution failed, retrying plain query: %v", err)
	observability.IncrementExecutionFallback()

	rs, fallbackErr := e.fetchOnce(ctx, query)
	if fallbackErr != nil {
		return nil, errors.Wrap(errors.ErrQueryExecution, fallbackErr,
			fmt.Sprintf("query execution failed on both tiers (optimized: %v)", err))
	}
	return rs, nil
}

func (e *Executor) fetchOnce(ctx context.Context, query string) (*ResultSet, error) {
	conn, err := e.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanResultSet(rows)
}

// scanResultSet 读取全部行，按驱动上报的类型转换值
func scanResultSet(rows *sql.Rows) (*ResultSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	dbTypes := make([]string, len(columns))
	if types, err := rows.ColumnTypes(); err == nil {
		for i, ct := range types {
			if i < len(dbTypes) {
				dbTypes[i] = dtypeFromDatabase(ct.DatabaseTypeName())
			}
		}
	}

	rs := &ResultSet{
		Columns: columns,
		Rows:    make([][]any, 0),
	}

	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for i := range values {
			values[i] = convertValue(values[i], dbTypes[i])
		}
		rs.Rows = append(rs.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	rs.ColumnTypes = make([]string, len(columns))
	for i := range columns {
		if dbTypes[i] != "" {
			rs.ColumnTypes[i] = dbTypes[i]
		} else {
			rs.ColumnTypes[i] = inferDtype(rs.Column(i))
		}
	}

	return rs, nil
}

// Run 执行 DDL/DML，返回影响行数
func (e *Executor) Run(ctx context.Context, stmt string) (int64, error) {
	conn, err := e.db.Conn(ctx)
	if err != nil {
		return 0, errors.Wrap(errors.ErrQueryExecution, err, "acquire connection failed")
	}
	defer conn.Close()

	result, err := conn.ExecContext(ctx, stmt)
	if err != nil {
		return 0, errors.Wrap(errors.ErrQueryExecution, err, "statement execution failed")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return affected, nil
}

// Close 关闭连接池
func (e *Executor) Close() error {
	if e.db == nil {
		return nil
	}
	return e.db.Close()
}
