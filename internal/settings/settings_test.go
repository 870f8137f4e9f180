package settings

import (
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/gigboard/config"
)

func defaults() config.AppConfigValues {
	v := make(config.AppConfigValues)
	for _, k := range Keys() {
		v[k.Name] = k.Default
	}
	return v
}

func TestFromValues(t *testing.T) {
	v := defaults()
	v["site_key"] = "secret"

	s, err := FromValues(v)
	if err != nil {
		t.Fatalf("FromValues: %v", err)
	}
	if s.PageSize != 10 {
		t.Errorf("PageSize = %d, want 10", s.PageSize)
	}
	if s.ClaimTTL != 24*time.Hour || s.DupWindow != 48*time.Hour || s.FreshWindow != 168*time.Hour {
		t.Errorf("windows = %s %s %s", s.ClaimTTL, s.DupWindow, s.FreshWindow)
	}
	if s.Mail.Enabled() {
		t.Error("mail should be disabled without smtp_host")
	}
	if s.RatePerMinute != 300 || s.RateBurst != 60 {
		t.Errorf("rate = %d/min burst %d", s.RatePerMinute, s.RateBurst)
	}
}

func TestValidate(t *testing.T) {
	v := defaults()
	v["mongo_uri"] = "postgres://nope"
	v["page_size"] = 0
	v["smtp_host"] = "smtp.example.com"
	v["rate_burst"] = 0

	_, err := FromValues(v)
	if err == nil {
		t.Fatal("FromValues should fail")
	}
	for _, want := range []string{"mongo_uri", "page_size", "site_key", "mail_from", "rate_burst"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestValidateStore_IgnoresServerKeys(t *testing.T) {
	s := Parse(defaults())
	if err := s.ValidateStore(); err != nil {
		t.Errorf("ValidateStore: %v", err)
	}
	if err := s.Validate(); err == nil || !strings.Contains(err.Error(), "site_key") {
		t.Errorf("Validate = %v, want a site_key problem", err)
	}

	s.MongoDatabase = ""
	if err := s.ValidateStore(); err == nil {
		t.Error("ValidateStore should require mongo_database")
	}

	s = Parse(defaults())
	s.MongoURI = "mongodb://localhost:27017/legacy"
	if err := s.ValidateStore(); err == nil || !strings.Contains(err.Error(), "legacy") {
		t.Errorf("ValidateStore = %v, want a database mismatch", err)
	}
}
