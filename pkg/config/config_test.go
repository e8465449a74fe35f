package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTP.Port != 3000 {
		t.Errorf("port = %d, want 3000", cfg.HTTP.Port)
	}
	if cfg.HTTP.BaseURL != "/api" {
		t.Errorf("base url = %q, want /api", cfg.HTTP.BaseURL)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("token ttl = %v, want 24h", cfg.Auth.TokenTTL)
	}
	if cfg.Orders.ClearCartOnCheckout {
		t.Error("clear_cart_on_checkout should default to false")
	}
	if cfg.RabbitMQ.Exchange != "shop.events" {
		t.Errorf("exchange = %q", cfg.RabbitMQ.Exchange)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
http:
  port: 8080
  base_url: v2/
auth:
  jwt_secret: from-file
  token_ttl: 1h
database:
  driver: postgres
orders:
  clear_cart_on_checkout: true
`)
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_DSN", "host=db user=shop")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d, want env override 9090", cfg.HTTP.Port)
	}
	if cfg.HTTP.BaseURL != "/v2" {
		t.Errorf("base url = %q, want /v2", cfg.HTTP.BaseURL)
	}
	if cfg.Auth.JWTSecret != "from-file" {
		t.Errorf("jwt secret = %q", cfg.Auth.JWTSecret)
	}
	if cfg.Auth.TokenTTL != time.Hour {
		t.Errorf("token ttl = %v", cfg.Auth.TokenTTL)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.DSN != "host=db user=shop" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if !cfg.Orders.ClearCartOnCheckout {
		t.Error("clear_cart_on_checkout not read from file")
	}
}

func TestLoadRequiresSecretWhenAuthEnabled(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	path := writeConfig(t, "auth:\n  enabled: true\n")

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestMySQLDSN(t *testing.T) {
	c := MySQLConfig{Host: "db", Port: 3306, Username: "u", Password: "p", Database: "shop"}
	want := "u:p@tcp(db:3306)/shop?charset=utf8mb4&parseTime=True&loc=Local"
	if got := c.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
