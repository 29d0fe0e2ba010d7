package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/colisso/internal/flagx"
	"github.com/dmitrijs2005/colisso/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "15m" and integer nanoseconds are accepted.
// Pointer fields distinguish "absent" from "false".
type JsonConfig struct {
	HTTPAddr                     string         `json:"http_addr"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
	ArchiveEnabled               *bool          `json:"archive_enabled"`
	PublicBaseURL                string         `json:"public_base_url"`
	QRPayloadMode                string         `json:"qr_payload_mode"`
	TrackingPrefix               string         `json:"tracking_prefix"`
	SenderName                   string         `json:"sender_name"`
	SenderCity                   string         `json:"sender_city"`
	SenderPhone                  string         `json:"sender_phone"`
	LogLevel                     string         `json:"log_level"`
	CORSOrigins                  []string       `json:"cors_origins"`
}

// parseJson loads the file named by -c/-config, if any, and copies every
// field it sets into config. A missing or malformed file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFile()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	set(&config.HTTPAddr, c.HTTPAddr)
	set(&config.DatabaseDSN, c.DatabaseDSN)
	set(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration.Duration != 0 {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	set(&config.S3RootUser, c.S3RootUser)
	set(&config.S3RootPassword, c.S3RootPassword)
	set(&config.S3Bucket, c.S3Bucket)
	set(&config.S3Region, c.S3Region)
	set(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if c.ArchiveEnabled != nil {
		config.ArchiveEnabled = *c.ArchiveEnabled
	}
	set(&config.PublicBaseURL, c.PublicBaseURL)
	set(&config.QRPayloadMode, c.QRPayloadMode)
	set(&config.TrackingPrefix, c.TrackingPrefix)
	set(&config.SenderName, c.SenderName)
	set(&config.SenderCity, c.SenderCity)
	set(&config.SenderPhone, c.SenderPhone)
	set(&config.LogLevel, c.LogLevel)
	if c.CORSOrigins != nil {
		config.CORSOrigins = c.CORSOrigins
	}
}
