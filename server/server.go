// server/server.go
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dalemusser/gigboard/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/crypto/acme"
	"golang.org/x/crypto/acme/autocert"
)

// WithShutdownSignals returns a context canceled on SIGINT or SIGTERM.
// The returned cancel function also stops signal delivery.
func WithShutdownSignals(parent context.Context, logger *zap.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigCh:
			if logger != nil {
				logger.Info("shutdown signal received", zap.Any("signal", sig))
			}
			cancel()
		case <-ctx.Done():
		}
		// sigCh is left open; nothing reads it after Stop.
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// running is a started server plus its optional :80 companion (ACME
// challenge or HTTPS redirect).
type running struct {
	primary *http.Server
	ln      net.Listener
	aux     *http.Server
	errs    chan error
	auxErrs chan error
}

// ListenAndServeWithContext serves handler over plain HTTP, manual TLS, or
// Let's Encrypt http-01, and blocks until ctx is canceled or a server
// fails. Shutdown waits up to cfg.HTTP.ShutdownTimeout for open requests.
func ListenAndServeWithContext(ctx context.Context, cfg *config.CoreConfig, handler http.Handler, logger *zap.Logger) error {
	if cfg == nil {
		return errors.New("server: cfg is nil")
	}
	if handler == nil {
		return errors.New("server: handler is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	srv := newHTTPServer(cfg, handler, logger)

	var (
		run *running
		err error
	)
	switch {
	case !cfg.HTTP.UseHTTPS:
		run, err = startPlain(cfg, srv, logger)
	case cfg.TLS.UseLetsEncrypt:
		run, err = startAutocert(ctx, cfg, srv, logger)
	default:
		run, err = startManualTLS(cfg, srv, logger)
	}
	if err != nil {
		return err
	}
	return run.wait(ctx, cfg.HTTP.ShutdownTimeout, logger)
}

func newHTTPServer(cfg *config.CoreConfig, handler http.Handler, logger *zap.Logger) *http.Server {
	srv := &http.Server{
		Handler:           handler,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}
	if stdlog, err := zap.NewStdLogAt(logger, zapcore.WarnLevel); err == nil {
		srv.ErrorLog = stdlog
	} else {
		logger.Warn("failed to attach stdlib error logger", zap.Error(err))
	}
	return srv
}

func startPlain(cfg *config.CoreConfig, srv *http.Server, logger *zap.Logger) (*running, error) {
	addr := ":" + strconv.Itoa(cfg.HTTP.HTTPPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen http %s: %w", addr, err)
	}
	logger.Info("HTTP server listening", zap.String("addr", ln.Addr().String()))
	return serve(srv, ln, nil), nil
}

func startAutocert(ctx context.Context, cfg *config.CoreConfig, srv *http.Server, logger *zap.Logger) (*running, error) {
	m := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(cfg.TLS.Domain),
		Cache:      autocert.DirCache(cfg.TLS.LetsEncryptCacheDir),
		Email:      cfg.TLS.LetsEncryptEmail,
	}
	if cfg.TLS.ACMEDirectoryURL != "" {
		m.Client = &acme.Client{DirectoryURL: cfg.TLS.ACMEDirectoryURL}
	}

	// :80 answers ACME challenges and redirects everything else.
	aux := newAuxServer(cfg, m.HTTPHandler(httpRedirectHandler()), logger)
	auxErrs := startAux(aux)
	logger.Info("ACME + redirect server listening", zap.String("addr", aux.Addr))

	if err := waitForCert(ctx, m, cfg.TLS.Domain, 60*time.Second); err != nil {
		logger.Warn("autocert pre-warm failed; first HTTPS hits may see TLS errors", zap.Error(err))
	}

	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12, GetCertificate: m.GetCertificate}
	run, err := serveTLS(cfg, srv, tlsCfg, aux, auxErrs)
	if err != nil {
		return nil, err
	}
	logger.Info("HTTPS server (Let's Encrypt) listening",
		zap.String("addr", run.ln.Addr().String()),
		zap.String("domain", cfg.TLS.Domain))
	return run, nil
}

func startManualTLS(cfg *config.CoreConfig, srv *http.Server, logger *zap.Logger) (*running, error) {
	if cfg.TLS.CertFile == "" || cfg.TLS.KeyFile == "" {
		return nil, errors.New("manual TLS selected but cert_file / key_file not provided")
	}
	if err := validateTLSFiles(cfg.TLS.CertFile, cfg.TLS.KeyFile); err != nil {
		if !errors.Is(err, errKeyPermissions) {
			return nil, err
		}
		if cfg.Env == "prod" {
			return nil, fmt.Errorf("production security: %w", err)
		}
		logger.Warn("TLS key file security warning (would block in prod)", zap.Error(err))
	}

	cert, err := tls.LoadX509KeyPair(cfg.TLS.CertFile, cfg.TLS.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load TLS cert/key: %w", err)
	}

	aux := newAuxServer(cfg, httpRedirectHandler(), logger)
	auxErrs := startAux(aux)
	logger.Info("HTTP → HTTPS redirect server listening", zap.String("addr", aux.Addr))

	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12, Certificates: []tls.Certificate{cert}}
	run, err := serveTLS(cfg, srv, tlsCfg, aux, auxErrs)
	if err != nil {
		return nil, err
	}
	logger.Info("HTTPS server (manual TLS) listening",
		zap.String("addr", run.ln.Addr().String()),
		zap.String("cert_file", cfg.TLS.CertFile))
	return run, nil
}

func serveTLS(cfg *config.CoreConfig, srv *http.Server, tlsCfg *tls.Config, aux *http.Server, auxErrs chan error) (*running, error) {
	addr := ":" + strconv.Itoa(cfg.HTTP.HTTPSPort)
	base, err := net.Listen("tcp", addr)
	if err != nil {
		_ = aux.Shutdown(context.Background())
		return nil, fmt.Errorf("listen https %s: %w", addr, err)
	}
	srv.TLSConfig = tlsCfg
	run := serve(srv, tls.NewListener(base, tlsCfg), aux)
	run.auxErrs = auxErrs
	return run, nil
}

func serve(srv *http.Server, ln net.Listener, aux *http.Server) *running {
	run := &running{primary: srv, ln: ln, aux: aux, errs: make(chan error, 1)}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			run.errs <- err
			return
		}
		run.errs <- nil
	}()
	return run
}

func newAuxServer(cfg *config.CoreConfig, h http.Handler, logger *zap.Logger) *http.Server {
	aux := &http.Server{
		Addr:              ":80",
		Handler:           h,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}
	if stdlog, err := zap.NewStdLogAt(logger, zapcore.WarnLevel); err == nil {
		aux.ErrorLog = stdlog
	}
	return aux
}

func startAux(aux *http.Server) chan error {
	errs := make(chan error, 1)
	go func() {
		if err := aux.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
			return
		}
		errs <- nil
	}()
	return errs
}

// wait blocks until shutdown is requested or a server stops. A nil
// auxErrs channel never fires, so plain HTTP only watches the primary.
func (r *running) wait(ctx context.Context, shutdownTimeout time.Duration, logger *zap.Logger) error {
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down server…")
			// ctx is already canceled; the shutdown window is its own.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			r.stopAux(shutdownCtx)
			err := r.primary.Shutdown(shutdownCtx)
			_ = r.ln.Close()
			if err != nil {
				return fmt.Errorf("server shutdown: %w", err)
			}
			logger.Info("server stopped gracefully")
			return nil

		case err := <-r.errs:
			r.stopAux(context.Background())
			_ = r.ln.Close()
			if err != nil {
				return fmt.Errorf("primary server error: %w", err)
			}
			return nil

		case err := <-r.auxErrs:
			if err != nil {
				if closeErr := r.primary.Close(); closeErr != nil {
					logger.Error("failed to close primary server after auxiliary crash", zap.Error(closeErr))
				}
				_ = r.ln.Close()
				return fmt.Errorf("auxiliary server error: %w", err)
			}
			r.aux, r.auxErrs = nil, nil
		}
	}
}

func (r *running) stopAux(ctx context.Context) {
	if r.aux != nil {
		_ = r.aux.Shutdown(ctx)
	}
}
