package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORTAL_HTTP_ADDR", ":9999")
	t.Setenv("PORTAL_MODE", "live")
	t.Setenv("DATABASE_DSN", "postgres://x")
	t.Setenv("JWT_SECRET", "jwt")
	t.Setenv("ACCESS_TOKEN_TTL", "30m")
	t.Setenv("S3_BUCKET", "files")
	t.Setenv("SIGNED_URL_TTL", "10m")
	t.Setenv("UPLOAD_CONCURRENCY", "2")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("NAVER_MAP_CLIENT_ID", "id")
	t.Setenv("NAVER_MAP_CLIENT_SECRET", "secret")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, ":9999", c.HTTPAddr)
	assert.Equal(t, ModeLive, c.Mode)
	assert.Equal(t, "postgres://x", c.DatabaseDSN)
	assert.Equal(t, "jwt", c.SecretKey)
	assert.Equal(t, 30*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, "files", c.S3Bucket)
	assert.Equal(t, 10*time.Minute, c.SignedURLTTL)
	assert.Equal(t, 2, c.UploadConcurrency)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.AllowedOrigins)
	assert.True(t, c.GeocoderConfigured())
}

func TestParseEnv_ViteFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("VITE_NAVER_MAP_CLIENT_ID", "vite-id")
	t.Setenv("VITE_NAVER_MAP_CLIENT_SECRET", "vite-secret")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)
	assert.Equal(t, "vite-id", c.NaverClientID)
	assert.Equal(t, "vite-secret", c.NaverClientSecret)

	t.Setenv("NAVER_MAP_CLIENT_ID", "real-id")
	parseEnv(&c)
	assert.Equal(t, "real-id", c.NaverClientID)
}

func TestParseEnv_BadNumberPanics(t *testing.T) {
	clearEnv(t)
	t.Setenv("UPLOAD_CONCURRENCY", "three")

	var c Config
	require.Panics(t, func() { parseEnv(&c) })
}
