package utils

import (
	"context"
	"testing"
	"time"
)

func TestPostgresPoolDefaults(t *testing.T) {
	p := PostgresPoolConfig{MaxOpenConns: 5}.withDefaults()
	if p.MaxOpenConns != 5 {
		t.Fatalf("explicit value overwritten: %d", p.MaxOpenConns)
	}
	if p.MaxIdleConns != 25 || p.PingTimeout != 5*time.Second {
		t.Fatalf("unexpected defaults: %+v", p)
	}
}

func TestOpenPostgres_FailsFastWhenUnreachable(t *testing.T) {
	dsn := "host=127.0.0.1 port=1 user=x dbname=x sslmode=disable connect_timeout=1"
	db, err := OpenPostgres(context.Background(), PostgresDriver, dsn, PostgresPoolConfig{PingTimeout: 2 * time.Second})
	if err == nil {
		db.Close()
		t.Fatalf("expected ping error")
	}
}
