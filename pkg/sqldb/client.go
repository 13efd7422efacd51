package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Client manages a database/sql connection pool for one of the supported drivers.
type Client struct {
	db     *sql.DB
	driver string
}

// NewClient opens and pings a connection pool.
func NewClient(opts ...ClientOption) (*Client, error) {
	cfg := &ClientConfig{
		Driver:          DriverClickHouse,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     10 * time.Second,
		PingTimeout:     5 * time.Second,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	dsn, err := buildDSN(*cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s open: %w", cfg.Driver, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s ping: %w", cfg.Driver, err)
	}

	return &Client{db: db, driver: cfg.Driver}, nil
}

// DB returns *sql.DB for direct use.
func (c *Client) DB() *sql.DB {
	return c.db
}

// Driver returns the driver name the pool was opened with.
func (c *Client) Driver() string {
	return c.driver
}

// Health performs health check.
func (c *Client) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes connection pool.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Exec runs statements in order, stopping at the first failure.
func (c *Client) Exec(ctx context.Context, stmts ...string) error {
	for _, stmt := range stmts {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec: %w", err)
		}
	}
	return nil
}

func buildDSN(cfg ClientConfig) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}

	switch cfg.Driver {
	case DriverClickHouse:
		if cfg.Host == "" {
			return "", fmt.Errorf("host is required")
		}
		return clickhouseDSN(cfg), nil
	case DriverPostgres:
		if cfg.Host == "" {
			return "", fmt.Errorf("host is required")
		}
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(cfg.User, cfg.Password),
			Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Path:   "/" + cfg.Database,
		}
		if cfg.DialTimeout > 0 {
			u.RawQuery = fmt.Sprintf("connect_timeout=%d", int(cfg.DialTimeout.Seconds()))
		}
		return u.String(), nil
	case DriverSQLite:
		if cfg.Database == "" {
			return ":memory:", nil
		}
		return cfg.Database, nil
	default:
		return "", fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
}

func clickhouseDSN(cfg ClientConfig) string {
	scheme := "clickhouse://"
	if cfg.UseHTTP {
		scheme = "http://"
	}
	dsn := fmt.Sprintf("%s%s:%s@%s:%d/%s",
		scheme, cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	params := url.Values{}
	if cfg.DialTimeout > 0 {
		params.Set("dial_timeout", cfg.DialTimeout.String())
	}
	if cfg.ReadTimeout > 0 {
		params.Set("read_timeout", cfg.ReadTimeout.String())
	}
	// seconds granularity is what the server accepts
	if cfg.MaxExecTime > 0 {
		params.Set("max_execution_time", fmt.Sprint(int(cfg.MaxExecTime.Seconds())))
	}
	if len(params) > 0 {
		dsn += "?" + params.Encode()
	}
	return dsn
}
