package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/riskibarqy/scoreboard-wall/internal/domain/league"
	"github.com/riskibarqy/scoreboard-wall/internal/platform/logging"
	"github.com/stretchr/testify/require"
)

// isolate points Load at a .env file that does not exist so the developer's local file
// never leaks into assertions.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("DISPLAY_TIMEZONE", "UTC")
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "scoreboard-wall", cfg.ServiceName)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, 60*time.Second, cfg.PollInterval)
	require.Equal(t, 16, cfg.FetchWorkers)
	require.Equal(t, 50, cfg.AuxFeedLimit)
	require.Equal(t, 10*time.Minute, cfg.AuxCacheTTL)
	require.Equal(t, logging.LevelInfo, cfg.LogLevel)
	require.Equal(t, "UTC", cfg.DisplayLocation.String())
	require.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	require.True(t, cfg.MetricsEnabled)
	require.True(t, cfg.ESPNCircuitEnabled)
	require.Equal(t, "scoreboard-wall/dev", cfg.ESPNUserAgent)
	require.True(t, cfg.Favorites.Contains(league.CategoryNFL, "KC"))
}

func TestLoad_AppEnvValidation(t *testing.T) {
	isolate(t)
	t.Setenv("APP_ENV", "invalid")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	isolate(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	isolate(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-team=wall, uptrace-dsn='https://token@api.uptrace.dev?grpc=4317'")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://token@api.uptrace.dev?grpc=4317", cfg.UptraceDSN)
}

func TestLoad_PipelineSettings(t *testing.T) {
	isolate(t)
	t.Setenv("DISPLAY_TIMEZONE", "America/New_York")
	t.Setenv("POLL_INTERVAL", "30s")
	t.Setenv("FETCH_WORKERS", "4")
	t.Setenv("AUX_FEED_LIMIT", "20")
	t.Setenv("AUX_CACHE_TTL", "0s")
	t.Setenv("FAVORITE_TEAMS", "nhl:bos|tor,WNBA:LV")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "America/New_York", cfg.DisplayLocation.String())
	require.Equal(t, 30*time.Second, cfg.PollInterval)
	require.Equal(t, 4, cfg.FetchWorkers)
	require.Equal(t, 20, cfg.AuxFeedLimit)
	require.Zero(t, cfg.AuxCacheTTL)
	require.True(t, cfg.Favorites.Contains(league.CategoryNHL, "TOR"))
	require.True(t, cfg.Favorites.Contains(league.CategoryNHL, "NYR"))
	require.True(t, cfg.Favorites.Contains(league.CategoryWNBA, "lv"))
}

func TestLoad_RejectsInvalidPipelineSettings(t *testing.T) {
	cases := map[string]string{
		"POLL_INTERVAL":              "0s",
		"FETCH_WORKERS":              "0",
		"AUX_FEED_LIMIT":             "-1",
		"AUX_CACHE_TTL":              "-5m",
		"DISPLAY_TIMEZONE":           "Mars/Olympus_Mons",
		"FAVORITE_TEAMS":             "KC",
		"ESPN_TIMEOUT":               "soon",
		"ESPN_CIRCUIT_FAILURE_COUNT": "0",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			isolate(t)
			t.Setenv(key, value)

			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoad_DotEnvFillsUnsetValues(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FETCH_WORKERS=3\nAPP_HTTP_ADDR=:9090\n"), 0o600))
	t.Setenv("APP_ENV_FILE", path)
	t.Setenv("APP_HTTP_ADDR", ":7070")
	t.Setenv("FETCH_WORKERS", "")
	require.NoError(t, os.Unsetenv("FETCH_WORKERS"))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":7070", cfg.HTTPAddr)
	require.Equal(t, 3, cfg.FetchWorkers)
}

func TestSplitCSV(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, splitCSV(" a, ,b,"))
	require.Empty(t, splitCSV(""))
}
