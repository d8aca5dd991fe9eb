package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testYAML = `
db:
  host: dbhost
  port: 5433
  user: app
  password: pw
  name: goalboard

mq:
  url: amqp://guest:guest@mq:5672/

redis:
  addr: redis:6379
  db: 1
  cache_ttl: 90s

jwt:
  secret: s3cret

server:
  port: ":9090"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	cfg := LoadFile(writeConfig(t, testYAML))

	if cfg.DB.Host != "dbhost" || cfg.DB.Port != 5433 || cfg.DB.Name != "goalboard" {
		t.Fatalf("unexpected db config %+v", cfg.DB)
	}
	if cfg.MQ.URL != "amqp://guest:guest@mq:5672/" {
		t.Fatalf("unexpected mq url %q", cfg.MQ.URL)
	}
	if cfg.Redis.Addr != "redis:6379" || cfg.Redis.DB != 1 {
		t.Fatalf("unexpected redis config %+v", cfg.Redis)
	}
	if cfg.Redis.CacheTTL != 90*time.Second {
		t.Fatalf("cache ttl = %v, want 90s", cfg.Redis.CacheTTL)
	}
	if cfg.JWT.Secret != "s3cret" {
		t.Fatalf("unexpected jwt secret %q", cfg.JWT.Secret)
	}
	if cfg.Server.Port != ":9090" {
		t.Fatalf("unexpected server port %q", cfg.Server.Port)
	}
}

func TestLoadFileDefaultTTL(t *testing.T) {
	cfg := LoadFile(writeConfig(t, "db:\n  host: x\n"))

	if cfg.Redis.CacheTTL != 5*time.Minute {
		t.Fatalf("cache ttl = %v, want default 5m", cfg.Redis.CacheTTL)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "envhost")
	t.Setenv("DB_PORT", "6000")
	t.Setenv("REDIS_ADDR", "envredis:6379")
	t.Setenv("JWT_SECRET", "envsecret")
	t.Setenv("SERVER_PORT", ":7070")

	cfg := LoadFile(writeConfig(t, testYAML))

	if cfg.DB.Host != "envhost" || cfg.DB.Port != 6000 {
		t.Fatalf("db env override not applied: %+v", cfg.DB)
	}
	if cfg.Redis.Addr != "envredis:6379" {
		t.Fatalf("redis env override not applied: %q", cfg.Redis.Addr)
	}
	if cfg.JWT.Secret != "envsecret" {
		t.Fatalf("jwt env override not applied: %q", cfg.JWT.Secret)
	}
	if cfg.Server.Port != ":7070" {
		t.Fatalf("server env override not applied: %q", cfg.Server.Port)
	}
}
