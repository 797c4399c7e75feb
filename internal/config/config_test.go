package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SERVICE_NAME", "fixturesync-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "fixturesync-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default wildcard", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Fatalf("unexpected default CORS origins: %+v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("comma separated parsing", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 2 {
			t.Fatalf("unexpected CORS origins length: %d", len(cfg.CORSAllowedOrigins))
		}
		if cfg.CORSAllowedOrigins[0] != "https://a.example.com" {
			t.Fatalf("unexpected first CORS origin: %s", cfg.CORSAllowedOrigins[0])
		}
		if cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
			t.Fatalf("unexpected second CORS origin: %s", cfg.CORSAllowedOrigins[1])
		}
	})
}

func TestLoad_DBDisablePreparedBinaryResultParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default true", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.DBDisablePreparedBinary {
			t.Fatalf("expected DBDisablePreparedBinary=true by default")
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "not-bool")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid DB_DISABLE_PREPARED_BINARY_RESULT")
		}
	})
}

func TestLoad_CacheConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("CACHE_ENABLED", "")
		t.Setenv("CACHE_TTL", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.CacheEnabled {
			t.Fatalf("expected cache enabled by default")
		}
		if cfg.CacheTTL != 60*time.Second {
			t.Fatalf("unexpected default cache ttl: %s", cfg.CacheTTL)
		}
	})

	t.Run("invalid ttl", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "bad")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid CACHE_TTL")
		}
	})
}

func TestLoad_QuotaConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("QUOTA_DAILY_LIMIT", "")
		t.Setenv("QUOTA_TIMEZONE", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.QuotaDailyLimit != 7500 {
			t.Fatalf("unexpected default daily limit: %d", cfg.QuotaDailyLimit)
		}
		if cfg.QuotaTimezone != time.UTC {
			t.Fatalf("unexpected default quota timezone: %v", cfg.QuotaTimezone)
		}
	})

	t.Run("invalid limit", func(t *testing.T) {
		t.Setenv("QUOTA_DAILY_LIMIT", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for QUOTA_DAILY_LIMIT=0")
		}
	})

	t.Run("invalid timezone", func(t *testing.T) {
		t.Setenv("QUOTA_DAILY_LIMIT", "")
		t.Setenv("QUOTA_TIMEZONE", "Not/AZone")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid QUOTA_TIMEZONE")
		}
	})
}

func TestLoad_JobIntervalsParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.JobDailyInterval != 6*time.Hour {
			t.Fatalf("unexpected default daily interval: %s", cfg.JobDailyInterval)
		}
		if cfg.JobStatsInterval != 12*time.Hour {
			t.Fatalf("unexpected default stats interval: %s", cfg.JobStatsInterval)
		}
		if cfg.JobStatsLimit != 50 {
			t.Fatalf("unexpected default stats limit: %d", cfg.JobStatsLimit)
		}
		if cfg.MaxConsecutiveErrors != 5 {
			t.Fatalf("unexpected default max consecutive errors: %d", cfg.MaxConsecutiveErrors)
		}
	})

	t.Run("invalid interval", func(t *testing.T) {
		t.Setenv("JOB_DAILY_INTERVAL", "0s")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for JOB_DAILY_INTERVAL=0s")
		}
	})
}

func TestLoad_APIFootballConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("disabled by default", func(t *testing.T) {
		t.Setenv("API_FOOTBALL_ENABLED", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.APIFootballEnabled {
			t.Fatalf("expected APIFootballEnabled=false by default")
		}
		if cfg.APIFootballBaseURL != "https://v3.football.api-sports.io" {
			t.Fatalf("unexpected default base URL: %q", cfg.APIFootballBaseURL)
		}
	})

	t.Run("enabled requires token", func(t *testing.T) {
		t.Setenv("API_FOOTBALL_ENABLED", "true")
		t.Setenv("API_FOOTBALL_TOKEN", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when API_FOOTBALL_ENABLED=true without token")
		}
	})

	t.Run("enabled with valid values", func(t *testing.T) {
		t.Setenv("API_FOOTBALL_ENABLED", "true")
		t.Setenv("API_FOOTBALL_TOKEN", "token")
		t.Setenv("API_FOOTBALL_TIMEOUT", "15s")
		t.Setenv("API_FOOTBALL_MAX_RETRIES", "2")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.APIFootballEnabled {
			t.Fatalf("expected APIFootballEnabled=true")
		}
		if cfg.APIFootballTimeout != 15*time.Second {
			t.Fatalf("unexpected timeout: %s", cfg.APIFootballTimeout)
		}
		if cfg.APIFootballMaxRetries != 2 {
			t.Fatalf("unexpected max retries: %d", cfg.APIFootballMaxRetries)
		}
	})
}
