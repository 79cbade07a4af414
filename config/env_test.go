package config_test

import (
	"testing"

	"github.com/mestawet/gebeya/config"
)

func TestAPIBaseURLResolutionOrder(t *testing.T) {
	// explicit override wins and loses its trailing slash
	t.Setenv("GEBEYA_API_URL", "http://localhost:9999/")
	if got := config.APIBaseURL(); got != "http://localhost:9999" {
		t.Errorf("expected env override, got %q", got)
	}

	// dev proxy applies only in the local environment
	t.Setenv("GEBEYA_API_URL", "")
	t.Setenv("APP_ENV", "local")
	t.Setenv("DEV_PROXY", "http://localhost:5173")
	if got := config.APIBaseURL(); got != "http://localhost:5173/api" {
		t.Errorf("expected dev proxy path, got %q", got)
	}

	t.Setenv("APP_ENV", "production")
	if got := config.APIBaseURL(); got == "http://localhost:5173/api" {
		t.Error("dev proxy must not apply outside local")
	}

	// production fallback
	t.Setenv("DEV_PROXY", "")
	if got := config.APIBaseURL(); got != "https://gebeya-market.onrender.com" {
		t.Errorf("expected production fallback, got %q", got)
	}
}

func TestStoreDriverValidation(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Redis")
	if got := config.StoreDriver(); got != "redis" {
		t.Errorf("expected lowercased redis, got %q", got)
	}

	t.Setenv("STORE_DRIVER", "floppy")
	if got := config.StoreDriver(); got != "file" {
		t.Errorf("expected the default for an unknown driver, got %q", got)
	}
}

func TestDatabaseDSNFollowsDriver(t *testing.T) {
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("DB_DRIVER", "postgres")
	if got := config.DatabaseDSN(); got == "" || got == "gebeya.db" {
		t.Errorf("expected a postgres DSN, got %q", got)
	}

	t.Setenv("DATABASE_DSN", "custom-dsn")
	if got := config.DatabaseDSN(); got != "custom-dsn" {
		t.Errorf("expected the explicit DSN to win, got %q", got)
	}
}

func TestGetFallback(t *testing.T) {
	if got := config.Get("NO_SUCH_KEY_EVER", "fallback"); got != "fallback" {
		t.Errorf("expected fallback, got %q", got)
	}
}
