package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// envFiles are loaded, if present, before reading the environment.
// Variables already set in the process win over file values.
var envFiles = []string{".env", ".env.local"}

// parseEnv overlays settings from the process environment.
//
// Naver credentials are also accepted under the VITE_ prefixed names used
// by older front-end deployments.
func parseEnv(config *Config) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}

	setString(&config.HTTPAddr, "PORTAL_HTTP_ADDR")
	setString(&config.Mode, "PORTAL_MODE")
	setString(&config.DatabaseDSN, "DATABASE_DSN")
	setString(&config.LogLevel, "LOG_LEVEL")
	setString(&config.SecretKey, "JWT_SECRET")
	setDuration(&config.AccessTokenValidityDuration, "ACCESS_TOKEN_TTL")

	setString(&config.S3RootUser, "S3_ACCESS_KEY")
	setString(&config.S3RootPassword, "S3_SECRET_KEY")
	setString(&config.S3Bucket, "S3_BUCKET")
	setString(&config.S3Region, "S3_REGION")
	setString(&config.S3BaseEndpoint, "S3_ENDPOINT")
	setDuration(&config.SignedURLTTL, "SIGNED_URL_TTL")

	setInt(&config.UploadConcurrency, "UPLOAD_CONCURRENCY")
	setString(&config.TimeZone, "PORTAL_TIME_ZONE")
	setString(&config.RosterFile, "PORTAL_ROSTER_FILE")

	setString(&config.GeocoderBaseURL, "NAVER_MAP_BASE_URL")
	setString(&config.NaverClientID, "VITE_NAVER_MAP_CLIENT_ID")
	setString(&config.NaverClientID, "NAVER_MAP_CLIENT_ID")
	setString(&config.NaverClientSecret, "VITE_NAVER_MAP_CLIENT_SECRET")
	setString(&config.NaverClientSecret, "NAVER_MAP_CLIENT_SECRET")

	if v, ok := lookup("CORS_ALLOWED_ORIGINS"); ok {
		config.AllowedOrigins = splitList(v)
	}
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

// setInt and setDuration panic on malformed values, like the JSON overlay.
func setInt(dst *int, key string) {
	if v, ok := lookup(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		*dst = n
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, ok := lookup(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		*dst = d
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
