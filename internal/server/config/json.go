package config

import (
	"encoding/json"
	"os"

	"github.com/bomin1134/gb-ud-portal/internal/flagx"
	"github.com/bomin1134/gb-ud-portal/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON config file. Durations use
// timex.Duration so both "15m" and integer nanoseconds are accepted.
// Absent or zero fields leave the current value untouched.
type JsonConfig struct {
	HTTPAddr                    string         `json:"http_addr"`
	Mode                        string         `json:"mode"`
	DatabaseDSN                 string         `json:"database_dsn"`
	LogLevel                    string         `json:"log_level"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	SignedURLTTL                timex.Duration `json:"signed_url_ttl"`
	UploadConcurrency           int            `json:"upload_concurrency"`
	MaxFilesPerSubmit           int            `json:"max_files_per_submit"`
	MaxPhotosPerReport          int            `json:"max_photos_per_report"`
	MaxUploadBytes              int64          `json:"max_upload_bytes"`
	WindowWeeks                 int            `json:"window_weeks"`
	DashboardWeeks              int            `json:"dashboard_weeks"`
	TimeZone                    string         `json:"time_zone"`
	RosterFile                  string         `json:"roster_file"`
	GeocoderBaseURL             string         `json:"geocoder_base_url"`
	NaverClientID               string         `json:"naver_client_id"`
	NaverClientSecret           string         `json:"naver_client_secret"`
	AllowedOrigins              []string       `json:"allowed_origins"`
}

// parseJson loads the file named by -c / -config, if any, over config.
// An unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
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

	overlay(&config.HTTPAddr, c.HTTPAddr)
	overlay(&config.Mode, c.Mode)
	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.LogLevel, c.LogLevel)
	overlay(&config.SecretKey, c.SecretKey)
	overlay(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration.Duration)
	overlay(&config.S3RootUser, c.S3RootUser)
	overlay(&config.S3RootPassword, c.S3RootPassword)
	overlay(&config.S3Bucket, c.S3Bucket)
	overlay(&config.S3Region, c.S3Region)
	overlay(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	overlay(&config.SignedURLTTL, c.SignedURLTTL.Duration)
	overlay(&config.UploadConcurrency, c.UploadConcurrency)
	overlay(&config.MaxFilesPerSubmit, c.MaxFilesPerSubmit)
	overlay(&config.MaxPhotosPerReport, c.MaxPhotosPerReport)
	overlay(&config.MaxUploadBytes, c.MaxUploadBytes)
	overlay(&config.WindowWeeks, c.WindowWeeks)
	overlay(&config.DashboardWeeks, c.DashboardWeeks)
	overlay(&config.TimeZone, c.TimeZone)
	overlay(&config.RosterFile, c.RosterFile)
	overlay(&config.GeocoderBaseURL, c.GeocoderBaseURL)
	overlay(&config.NaverClientID, c.NaverClientID)
	overlay(&config.NaverClientSecret, c.NaverClientSecret)
	if len(c.AllowedOrigins) > 0 {
		config.AllowedOrigins = c.AllowedOrigins
	}
}

func overlay[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}
