package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testClientID     = "client-id"
	testClientSecret = "client-secret"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, SourceDirect, cfg.Source)
	assert.Equal(t, "https://tcgbusfs.blob.core.windows.net/dotapp/youbike/v2/youbike_immediate.json", cfg.TaipeiURL)
	assert.Contains(t, cfg.NewTaipeiURL, "data.ntpc.gov.tw")
	assert.False(t, cfg.TaipeiInsecureTLS)
	assert.True(t, cfg.NewTaipeiInsecureTLS)
	assert.Equal(t, "https://tdx.transportdata.tw/api/basic", cfg.TDXBaseURL)
	assert.Equal(t, []string{"Taipei", "NewTaipei"}, cfg.TDXCities)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "src/stations.json", cfg.OutputPath)
	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Equal(t, ".", cfg.ServeDir)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Empty(t, cfg.MetricsTextfile)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "youbike-stations", cfg.KafkaTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("DATA_SOURCE", "TDX")
	t.Setenv("TDX_CLIENT_ID", `"`+testClientID+`"`)
	t.Setenv("TDX_CLIENT_SECRET", `'`+testClientSecret+`'`)
	t.Setenv("TDX_CITIES", "NewTaipei")
	t.Setenv("TDX_API_BASE_URL", "http://localhost:9999/api/")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("OUTPUT_PATH", "out/stations.json")
	t.Setenv("NEW_TAIPEI_INSECURE_TLS", "false")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("METRICS_TEXTFILE", "/tmp/ubike.prom")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_TOPIC", "stations")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, SourceTDX, cfg.Source)
	assert.Equal(t, testClientID, cfg.TDXClientID)
	assert.Equal(t, testClientSecret, cfg.TDXClientSecret)
	assert.Equal(t, []string{"NewTaipei"}, cfg.TDXCities)
	assert.Equal(t, "http://localhost:9999/api", cfg.TDXBaseURL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "out/stations.json", cfg.OutputPath)
	assert.False(t, cfg.NewTaipeiInsecureTLS)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "/tmp/ubike.prom", cfg.MetricsTextfile)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "stations", cfg.KafkaTopic)
}

func TestLoad_TDXWithoutCredentials(t *testing.T) {
	t.Setenv("DATA_SOURCE", "tdx")
	t.Setenv("TDX_CLIENT_ID", testClientID)

	_, err := Load()
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "TDX_CLIENT_SECRET")
}

func TestLoad_TDXQuotedEmptyCredentials(t *testing.T) {
	t.Setenv("DATA_SOURCE", "tdx")
	t.Setenv("TDX_CLIENT_ID", `""`)
	t.Setenv("TDX_CLIENT_SECRET", testClientSecret)

	_, err := Load()
	require.ErrorIs(t, err, ErrInvalid)
}

func TestLoad_DirectIgnoresMissingCredentials(t *testing.T) {
	t.Setenv("DATA_SOURCE", "direct")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.TDXClientID)
}

func TestLoad_UnknownSource(t *testing.T) {
	t.Setenv("DATA_SOURCE", "ftp")
	_, err := Load()
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "DATA_SOURCE")
}

func TestLoad_UnsupportedTDXCity(t *testing.T) {
	t.Setenv("DATA_SOURCE", "tdx")
	t.Setenv("TDX_CLIENT_ID", testClientID)
	t.Setenv("TDX_CLIENT_SECRET", testClientSecret)
	t.Setenv("TDX_CITIES", "Taipei,Taoyuan")

	_, err := Load()
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "Taoyuan")
}

func TestLoad_InvalidRequestTimeout(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "soon")
	_, err := Load()
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "REQUEST_TIMEOUT")
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidInsecureFlag(t *testing.T) {
	t.Setenv("NEW_TAIPEI_INSECURE_TLS", "maybe")
	_, err := Load()
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "NEW_TAIPEI_INSECURE_TLS")
}

func TestValidate_AfterOverride(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Source = SourceTDX
	require.ErrorIs(t, cfg.Validate(), ErrInvalid)

	cfg.TDXClientID = testClientID
	cfg.TDXClientSecret = testClientSecret
	require.NoError(t, cfg.Validate())
}

func TestFromEnv_SkipsValidation(t *testing.T) {
	t.Setenv("DATA_SOURCE", "tdx")

	_, err := Load()
	require.ErrorIs(t, err, ErrInvalid)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, SourceTDX, cfg.Source)

	cfg.Source = SourceDirect
	assert.NoError(t, cfg.Validate())
}

func TestStripQuotes(t *testing.T) {
	assert.Equal(t, "abc", StripQuotes(`"abc"`))
	assert.Equal(t, "abc", StripQuotes(` 'abc' `))
	assert.Equal(t, "a\"b", StripQuotes(`a"b`))
	assert.Equal(t, "", StripQuotes(`""`))
}
