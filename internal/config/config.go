package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		Driver string
		DSN    string
	}
	OIDC struct {
		Issuer       string
		ClientID     string
		ClientSecret string
		RedirectURL  string
	}
	Content struct {
		BaseURL    string
		ProjectID  string
		Dataset    string
		APIVersion string
		Token      string
		CacheTTL   time.Duration
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	Log struct {
		Level  string
		Pretty bool
	}
	SessionLifetime time.Duration
	InsecureCookies bool
}

// Load reads config from environment (GALLERY_ prefix) and optional gallery.yaml.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GALLERY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("gallery")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional config file

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("session.lifetime", "720h")
	v.SetDefault("content.api_version", "2024-01-01")
	v.SetDefault("content.cache_ttl", "2m")
	v.SetDefault("log.level", "info")

	cfg := &Config{}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.DB.Driver = v.GetString("db.driver")
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.OIDC.Issuer = v.GetString("oidc.issuer")
	cfg.OIDC.ClientID = v.GetString("oidc.client_id")
	cfg.OIDC.ClientSecret = v.GetString("oidc.client_secret")
	cfg.OIDC.RedirectURL = v.GetString("oidc.redirect_url")
	cfg.Content.BaseURL = v.GetString("content.base_url")
	cfg.Content.ProjectID = v.GetString("content.project_id")
	cfg.Content.Dataset = v.GetString("content.dataset")
	cfg.Content.APIVersion = v.GetString("content.api_version")
	cfg.Content.Token = v.GetString("content.token")
	cfg.Redis.Addr = v.GetString("redis.addr")
	cfg.Redis.Password = v.GetString("redis.password")
	cfg.Redis.DB = v.GetInt("redis.db")
	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Pretty = v.GetBool("log.pretty")
	cfg.InsecureCookies = v.GetBool("insecure_cookies")

	lifetime, err := time.ParseDuration(v.GetString("session.lifetime"))
	if err != nil {
		return nil, fmt.Errorf("invalid GALLERY_SESSION_LIFETIME: %w", err)
	}
	cfg.SessionLifetime = lifetime

	ttl, err := time.ParseDuration(v.GetString("content.cache_ttl"))
	if err != nil {
		return nil, fmt.Errorf("invalid GALLERY_CONTENT_CACHE_TTL: %w", err)
	}
	cfg.Content.CacheTTL = ttl

	if cfg.DB.Driver == "" {
		return nil, fmt.Errorf("GALLERY_DB_DRIVER is required (sqlite3, mysql, postgres)")
	}
	if cfg.DB.DSN == "" {
		return nil, fmt.Errorf("GALLERY_DB_DSN is required")
	}
	if cfg.OIDC.Issuer == "" {
		return nil, fmt.Errorf("GALLERY_OIDC_ISSUER is required")
	}
	if cfg.OIDC.ClientID == "" {
		return nil, fmt.Errorf("GALLERY_OIDC_CLIENT_ID is required")
	}
	if cfg.OIDC.ClientSecret == "" {
		return nil, fmt.Errorf("GALLERY_OIDC_CLIENT_SECRET is required")
	}
	if cfg.OIDC.RedirectURL == "" {
		return nil, fmt.Errorf("GALLERY_OIDC_REDIRECT_URL is required")
	}
	if cfg.Content.ProjectID == "" && cfg.Content.BaseURL == "" {
		return nil, fmt.Errorf("GALLERY_CONTENT_PROJECT_ID or GALLERY_CONTENT_BASE_URL is required")
	}
	if cfg.Content.Dataset == "" {
		return nil, fmt.Errorf("GALLERY_CONTENT_DATASET is required")
	}

	return cfg, nil
}
