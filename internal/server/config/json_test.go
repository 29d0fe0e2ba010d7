package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"http_addr":                       "www.example:9000",
		"database_dsn":                    "postgres://db",
		"secret_key":                      "my_secret_key",
		"access_token_validity_duration":  "15m",
		"refresh_token_validity_duration": "24h",
		"s3_bucket":                       "bucket",
		"archive_enabled":                 true,
		"public_base_url":                 "https://colisso.fr",
		"qr_payload_mode":                 "url",
		"tracking_prefix":                 "BEL",
		"sender_name":                     "Colisso SAS",
		"cors_origins":                    []string{"https://app.colisso.fr"},
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.HTTPAddr)
		assert.Equal(t, "postgres://db", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 15*time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, 24*time.Hour, cfg.RefreshTokenValidityDuration)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.True(t, cfg.ArchiveEnabled)
		assert.Equal(t, "https://colisso.fr", cfg.PublicBaseURL)
		assert.Equal(t, "url", cfg.QRPayloadMode)
		assert.Equal(t, "BEL", cfg.TrackingPrefix)
		assert.Equal(t, "Colisso SAS", cfg.SenderName)
		assert.Equal(t, []string{"https://app.colisso.fr"}, cfg.CORSOrigins)

		// absent keys keep their previous values
		assert.Equal(t, "us-east-1", cfg.S3Region)
		assert.Equal(t, "Marseille", cfg.SenderCity)
	})

	t.Run("short flag", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", pathFlag}

		cfg := &Config{}
		parseJson(cfg)
		assert.Equal(t, "www.example:9000", cfg.HTTPAddr)
	})

	t.Run("no config flag → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{HTTPAddr: "defaults:1234", AccessTokenValidityDuration: 2 * time.Minute}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.HTTPAddr)
		assert.Equal(t, 2*time.Minute, cfg.AccessTokenValidityDuration)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})

	t.Run("missing file → panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", filepath.Join(dir, "absent.json")}
		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
