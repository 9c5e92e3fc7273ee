package sql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// 快速探测参数：启动时数据库不可达应尽快失败，而不是长时间阻塞服务
const (
	probeAttempts = 3
	probeInterval = 300 * time.Millisecond
	probeTimeout  = 500 * time.Millisecond
	probeDeadline = 2 * time.Second
)

const createCoursesTableSQL = `CREATE TABLE IF NOT EXISTS courses (
	id         TEXT PRIMARY KEY,
	position   INTEGER NOT NULL DEFAULT 0,
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Driver 管理课程数据库的连接与就绪
type Driver struct {
	pool *pgxpool.Pool
}

// EnsureReady 确保数据库可连接，并初始化连接池
// 参数：
// - dsn: 连接串，例如 postgresql://user@localhost:5432/courses?sslmode=disable
func (d *Driver) EnsureReady(ctx context.Context, dsn string) error {
	if dsn == "" {
		return fmt.Errorf("database url is empty")
	}
	if d.pool != nil {
		return nil
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("parse dsn failed: %w", err)
	}
	cfg.MaxConns = 4

	deadline := time.Now().Add(probeDeadline)
	var lastErr error
	for i := 0; i < probeAttempts && time.Now().Before(deadline); i++ {
		attemptCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		pool, err := pgxpool.NewWithConfig(attemptCtx, cfg)
		if err == nil {
			var one int
			// SELECT 1 进行连通性验证
			err = pool.QueryRow(attemptCtx, "SELECT 1").Scan(&one)
			if err == nil && one == 1 {
				d.pool = pool
				cancel()
				return nil
			}
			pool.Close()
		}
		lastErr = err
		cancel()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(probeInterval):
		}
	}

	return fmt.Errorf("database not ready on %s:%d (quick probe failed): %v",
		cfg.ConnConfig.Host, cfg.ConnConfig.Port, lastErr)
}

// EnsureSchema 创建 courses 表（已存在时不做任何事）
func (d *Driver) EnsureSchema(ctx context.Context) error {
	if d.pool == nil {
		return fmt.Errorf("database not connected")
	}
	if _, err := d.pool.Exec(ctx, createCoursesTableSQL); err != nil {
		return fmt.Errorf("failed to create courses table: %w", err)
	}
	return nil
}

// Pool 返回连接池
func (d *Driver) Pool() *pgxpool.Pool { return d.pool }

// Close 关闭连接池
func (d *Driver) Close() {
	if d.pool != nil {
		d.pool.Close()
		d.pool = nil
	}
}
