package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/colisso/internal/flagx"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by parseEnv.
const EnvPrefix = "COLISSO_"

// loadDotenv loads the file named by -env-file, or ./.env when present.
// Variables already set in the process environment win.
func loadDotenv() {
	path := flagx.EnvFile()
	if path == "" {
		path = ".env"
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return
		}
	}
	if err := godotenv.Load(path); err != nil {
		panic(err)
	}
}

// parseEnv overlays COLISSO_* variables onto config. Durations accept Go
// duration strings or whole minutes, lists are comma separated.
func parseEnv(config *Config) {
	loadDotenv()

	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) {
		v, ok := os.LookupEnv(EnvPrefix + name)
		if !ok {
			return
		}
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
			return
		}
		minutes, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		*dst = time.Duration(minutes) * time.Minute
	}

	str("HTTP_ADDR", &config.HTTPAddr)
	str("DATABASE_DSN", &config.DatabaseDSN)
	str("SECRET_KEY", &config.SecretKey)
	dur("ACCESS_TOKEN_TTL", &config.AccessTokenValidityDuration)
	dur("REFRESH_TOKEN_TTL", &config.RefreshTokenValidityDuration)
	str("S3_ROOT_USER", &config.S3RootUser)
	str("S3_ROOT_PASSWORD", &config.S3RootPassword)
	str("S3_BUCKET", &config.S3Bucket)
	str("S3_REGION", &config.S3Region)
	str("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	str("PUBLIC_BASE_URL", &config.PublicBaseURL)
	str("QR_PAYLOAD_MODE", &config.QRPayloadMode)
	str("TRACKING_PREFIX", &config.TrackingPrefix)
	str("SENDER_NAME", &config.SenderName)
	str("SENDER_CITY", &config.SenderCity)
	str("SENDER_PHONE", &config.SenderPhone)
	str("LOG_LEVEL", &config.LogLevel)

	if v, ok := os.LookupEnv(EnvPrefix + "ARCHIVE_ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		config.ArchiveEnabled = b
	}
	if v, ok := os.LookupEnv(EnvPrefix + "CORS_ORIGINS"); ok {
		config.CORSOrigins = splitList(v)
	}
}

func splitList(v string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
