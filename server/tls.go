// server/tls.go
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"golang.org/x/crypto/acme/autocert"
)

// errKeyPermissions marks a key file readable by group or others.
var errKeyPermissions = errors.New("overly permissive permissions")

// validateTLSFiles checks that the certificate and key exist as regular
// files. A key readable beyond its owner yields errKeyPermissions so the
// caller can decide how strict to be.
func validateTLSFiles(certFile, keyFile string) error {
	for _, f := range []struct{ kind, path string }{{"certificate", certFile}, {"key", keyFile}} {
		info, err := os.Stat(f.path)
		switch {
		case os.IsNotExist(err):
			return fmt.Errorf("TLS %s file does not exist: %s", f.kind, f.path)
		case err != nil:
			return fmt.Errorf("cannot access TLS %s file %s: %w", f.kind, f.path, err)
		case info.IsDir():
			return fmt.Errorf("TLS %s path is a directory, not a file: %s", f.kind, f.path)
		}
		// Unix permission bits mean nothing on Windows.
		if f.kind == "key" && runtime.GOOS != "windows" && info.Mode().Perm()&0o077 != 0 {
			return fmt.Errorf("TLS key file %s has %w %o (recommended: 0600)", f.path, errKeyPermissions, info.Mode().Perm())
		}
	}
	return nil
}

// waitForCert polls autocert until it holds a certificate for host, the
// timeout passes, or ctx ends, whichever comes first.
func waitForCert(ctx context.Context, m *autocert.Manager, host string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	for {
		_, err := m.GetCertificate(&tls.ClientHelloInfo{ServerName: host})
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timeout waiting for cert for %q: %w", host, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
}
