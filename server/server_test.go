package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestIsValidHost(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"gigs.example", true},
		{"gigs.example:8443", true},
		{"[::1]:8080", true},
		{"[fe80::1%eth0]", true},
		{"", false},
		{"gigs.example:70000", false},
		{"gigs.example\r\nX-Evil: 1", false},
		{"http://gigs.example", false},
		{"/gigs", false},
		{"[not-an-ip]", false},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			if got := isValidHost(tt.host); got != tt.want {
				t.Errorf("isValidHost(%q) = %v, want %v", tt.host, got, tt.want)
			}
		})
	}
}

func TestHTTPRedirectHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://gigs.example/graphql?query=x", nil)
	rec := httptest.NewRecorder()
	httpRedirectHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusMovedPermanently {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "https://gigs.example/graphql?query=x" {
		t.Errorf("Location = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "http://gigs.example/", nil)
	req.Host = "gigs.example:99999"
	rec = httptest.NewRecorder()
	httpRedirectHandler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad host status = %d", rec.Code)
	}
}

func TestValidateTLSFiles(t *testing.T) {
	dir := t.TempDir()
	cert := filepath.Join(dir, "cert.pem")
	key := filepath.Join(dir, "key.pem")
	if err := os.WriteFile(cert, []byte("cert"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(key, []byte("key"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := validateTLSFiles(cert, key); err != nil {
		t.Errorf("valid files: %v", err)
	}
	if err := validateTLSFiles(filepath.Join(dir, "missing.pem"), key); err == nil {
		t.Error("missing cert should fail")
	}
	if err := validateTLSFiles(cert, dir); err == nil {
		t.Error("directory key should fail")
	}

	if runtime.GOOS == "windows" {
		return
	}
	if err := os.Chmod(key, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := validateTLSFiles(cert, key); !errors.Is(err, errKeyPermissions) {
		t.Errorf("loose key permissions = %v, want errKeyPermissions", err)
	}
}
