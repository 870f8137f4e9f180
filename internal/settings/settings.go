// Package settings holds the application configuration built once at
// startup and passed to the store, the pagination engine and the GraphQL
// layer.
package settings

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/gigboard/config"
	"github.com/dalemusser/gigboard/pantry/email"
	"github.com/dalemusser/gigboard/pantry/mongo"
	"github.com/dalemusser/gigboard/pantry/pagination"
)

// Settings is the application configuration.
type Settings struct {
	MongoURI      string
	MongoDatabase string

	// PageSize is the item count of every paginated listing.
	PageSize int64

	SiteKID  string
	SiteKey  string
	ClaimTTL time.Duration

	// DupWindow rejects a repeated project subject by the same user.
	DupWindow time.Duration
	// FreshWindow bounds the projects eligible for random sampling.
	FreshWindow time.Duration

	// RatePerMinute and RateBurst bound /graphql requests per client IP.
	// A zero rate disables limiting.
	RatePerMinute int
	RateBurst     int

	// RedisURL selects a shared catalog cache; empty keeps it in process.
	RedisURL string
	CacheTTL time.Duration

	SiteURL string
	Mail    email.Config
}

// Keys declares the configuration keys read into Settings.
func Keys() []config.AppKey {
	return []config.AppKey{
		{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection string", Secret: true},
		{Name: "mongo_database", Default: "gigboard", Desc: "MongoDB database name"},
		{Name: "page_size", Default: int(pagination.DefaultPageSize), Desc: "Items per page for paginated listings"},
		{Name: "site_kid", Default: "gigboard", Desc: "Key id placed in token headers"},
		{Name: "site_key", Default: "", Desc: "HMAC secret for sign-in tokens (required)", Secret: true},
		{Name: "claim_ttl", Default: "24h", Desc: "Sign-in token lifetime"},
		{Name: "dup_window", Default: "48h", Desc: "Window for rejecting duplicate project submissions"},
		{Name: "fresh_window", Default: "168h", Desc: "Window of projects eligible for random sampling"},
		{Name: "rate_per_minute", Default: 300, Desc: "GraphQL requests per minute per client IP (0 disables)"},
		{Name: "rate_burst", Default: 60, Desc: "GraphQL request burst per client IP"},
		{Name: "redis_url", Default: "", Desc: "redis:// URL for the shared catalog cache (empty caches in process)", Secret: true},
		{Name: "cache_ttl", Default: "1m", Desc: "Catalog cache lifetime"},
		{Name: "site_url", Default: "http://localhost:8080", Desc: "Public site URL used in mail links"},
		{Name: "smtp_host", Default: "", Desc: "SMTP host (empty disables mail)"},
		{Name: "smtp_port", Default: 587, Desc: "SMTP port"},
		{Name: "smtp_username", Default: "", Desc: "SMTP username"},
		{Name: "smtp_password", Default: "", Desc: "SMTP password", Secret: true},
		{Name: "mail_from", Default: "", Desc: "Sender address for outgoing mail"},
	}
}

// FromValues builds Settings from loaded key values and validates them.
// Every problem is reported in one error.
func FromValues(v config.AppConfigValues) (Settings, error) {
	s := Parse(v)
	return s, s.Validate()
}

// Parse builds Settings from loaded key values without validating them.
func Parse(v config.AppConfigValues) Settings {
	return Settings{
		MongoURI:      strings.TrimSpace(v.String("mongo_uri")),
		MongoDatabase: strings.TrimSpace(v.String("mongo_database")),
		PageSize:      v.Int64("page_size"),
		SiteKID:       v.String("site_kid"),
		SiteKey:       v.String("site_key"),
		ClaimTTL:      v.Duration("claim_ttl", 24*time.Hour),
		DupWindow:     v.Duration("dup_window", 48*time.Hour),
		FreshWindow:   v.Duration("fresh_window", 7*24*time.Hour),
		RatePerMinute: v.Int("rate_per_minute"),
		RateBurst:     v.Int("rate_burst"),
		RedisURL:      strings.TrimSpace(v.String("redis_url")),
		CacheTTL:      v.Duration("cache_ttl", time.Minute),
		SiteURL:       v.String("site_url"),
		Mail: email.Config{
			Host:        v.String("smtp_host"),
			Port:        v.Int("smtp_port"),
			Username:    v.String("smtp_username"),
			Password:    v.String("smtp_password"),
			FromAddress: v.String("mail_from"),
			FromName:    "Gigboard",
		},
	}
}

// Validate checks the settings needed by the API server.
func (s Settings) Validate() error {
	problems := s.storeProblems()
	if s.SiteKey == "" {
		problems = append(problems, "site_key is required (GIGBOARD_SITE_KEY)")
	}
	if s.RatePerMinute < 0 {
		problems = append(problems, "rate_per_minute must be >= 0")
	}
	if s.RatePerMinute > 0 && s.RateBurst < 1 {
		problems = append(problems, "rate_burst must be >= 1 when rate limiting is on")
	}
	if s.Mail.Enabled() && s.Mail.FromAddress == "" {
		problems = append(problems, "mail_from is required when smtp_host is set")
	}
	return joinProblems(problems)
}

// ValidateStore checks only the settings needed to read the store, for
// tools that neither sign tokens nor send mail.
func (s Settings) ValidateStore() error {
	return joinProblems(s.storeProblems())
}

func (s Settings) storeProblems() []string {
	var problems []string
	if err := mongo.ValidateURI(s.MongoURI, s.MongoDatabase); err != nil {
		problems = append(problems, "mongo_uri: "+err.Error())
	}
	if s.MongoDatabase == "" {
		problems = append(problems, "mongo_database is required")
	}
	if s.PageSize < 1 {
		problems = append(problems, "page_size must be >= 1")
	}
	return problems
}

func joinProblems(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("settings: %s", strings.Join(problems, "; "))
}
