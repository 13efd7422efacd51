package sqldb

import (
	"context"
	"testing"
	"time"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  ClientConfig
		want string
	}{
		{
			name: "explicit dsn wins",
			cfg:  ClientConfig{Driver: DriverClickHouse, DSN: "clickhouse://x", Host: "ignored"},
			want: "clickhouse://x",
		},
		{
			name: "clickhouse native",
			cfg: ClientConfig{
				Driver: DriverClickHouse, Host: "ch", Port: 9000, Database: "reports",
				User: "u", Password: "p", MaxExecTime: 30 * time.Second,
			},
			want: "clickhouse://u:p@ch:9000/reports?max_execution_time=30",
		},
		{
			name: "clickhouse http",
			cfg:  ClientConfig{Driver: DriverClickHouse, Host: "ch", Port: 8123, Database: "r", UseHTTP: true},
			want: "http://:@ch:8123/r",
		},
		{
			name: "postgres",
			cfg: ClientConfig{
				Driver: DriverPostgres, Host: "pg", Port: 5432, Database: "reports",
				User: "u", Password: "p", DialTimeout: 5 * time.Second,
			},
			want: "postgres://u:p@pg:5432/reports?connect_timeout=5",
		},
		{
			name: "sqlite default memory",
			cfg:  ClientConfig{Driver: DriverSQLite},
			want: ":memory:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildDSN(tt.cfg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestBuildDSNErrors(t *testing.T) {
	if _, err := buildDSN(ClientConfig{Driver: DriverClickHouse}); err == nil {
		t.Fatalf("expected missing host error")
	}
	if _, err := buildDSN(ClientConfig{Driver: "oracle", Host: "x"}); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
}

func TestSQLiteClient(t *testing.T) {
	c, err := NewClient(WithDriver(DriverSQLite), WithMaxConnections(1, 1))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.Exec(ctx, "CREATE TABLE t (id INTEGER)", "INSERT INTO t VALUES (1)"); err != nil {
		t.Fatalf("exec: %v", err)
	}
	var n int
	if err := c.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM t").Scan(&n); err != nil || n != 1 {
		t.Fatalf("expected 1 row, got %d %v", n, err)
	}
	if c.Driver() != DriverSQLite {
		t.Fatalf("unexpected driver %q", c.Driver())
	}
}
