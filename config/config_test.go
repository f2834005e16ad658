package config

import (
	"strings"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_PASSWORD", "testpass")
	t.Setenv("JWT_SECRET", "testsecret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.ServerPort != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.ServerPort)
	}
	if cfg.DBSSLMode != "disable" {
		t.Errorf("expected default ssl mode disable, got %s", cfg.DBSSLMode)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("unexpected default origins: %v", cfg.AllowedOrigins)
	}
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "DB_PASSWORD") {
		t.Errorf("expected DB_PASSWORD in error, got %v", err)
	}
	if !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Errorf("expected JWT_SECRET in error, got %v", err)
	}
}

func TestDatabaseDSN(t *testing.T) {
	cfg := &Config{
		DBHost:     "db.internal",
		DBPort:     "5433",
		DBUser:     "foodgram",
		DBPassword: "secret",
		DBName:     "foodgram",
		DBSSLMode:  "require",
	}

	dsn := cfg.DatabaseDSN()
	want := "host=db.internal port=5433 user=foodgram password=secret dbname=foodgram sslmode=require"
	if dsn != want {
		t.Errorf("expected %q, got %q", want, dsn)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList("http://a.example.com, http://b.example.com,,")
	if len(got) != 2 || got[0] != "http://a.example.com" || got[1] != "http://b.example.com" {
		t.Errorf("unexpected result: %v", got)
	}
}
