package server

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"time"

	"github.com/jmanurodriguez/cloudinary-portal/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"
)

type SSLProvider interface {
	// Configure mutates srv.TLSConfig so that http.Server can serve TLS.
	Configure(srv *http.Server) error

	// Run launches any background logic the provider needs
	// (ACME challenge listener, certificate refresh, etc.).
	// It must return when ctx is cancelled.
	Run(ctx context.Context) error
}

// ACMEProvider obtains certificates from Let's Encrypt and caches them in a
// directory.
type ACMEProvider struct {
	certManager   autocert.Manager
	domain        string
	challengeAddr string
}

// DirCache returns an ACME provider restricted to domain, caching
// certificates under dir. An empty domain accepts any host name and skips
// the challenge listener.
func DirCache(dir, domain string) *ACMEProvider {
	p := &ACMEProvider{
		certManager: autocert.Manager{
			Prompt: autocert.AcceptTOS,
			Cache:  autocert.DirCache(dir),
		},
		domain:        domain,
		challengeAddr: ":http",
	}
	if domain != "" {
		p.certManager.HostPolicy = autocert.HostWhitelist(domain)
	}
	return p
}

func (p *ACMEProvider) Configure(srv *http.Server) error {
	if srv.TLSConfig == nil {
		srv.TLSConfig = &tls.Config{}
	}
	srv.TLSConfig.GetCertificate = p.certManager.GetCertificate
	srv.TLSConfig.NextProtos = append(srv.TLSConfig.NextProtos, "h2", "http/1.1")
	return nil
}

// Run serves ACME http-01 challenges and warms the certificate cache until
// ctx is cancelled.
func (p *ACMEProvider) Run(ctx context.Context) error {
	if p.domain == "" {
		<-ctx.Done()
		return nil
	}

	challenge := &http.Server{
		Addr:              p.challengeAddr,
		Handler:           p.certManager.HTTPHandler(nil),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		// Must run on port 80.
		if err := challenge.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Failed starting acme challenge listener", zap.Error(err))
		}
	}()

	go p.downloadCertificatesWithRetry(ctx)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return challenge.Shutdown(shutdownCtx)
}

func (p *ACMEProvider) downloadCertificatesWithRetry(ctx context.Context) {
	getCertificate := func() error {
		cert, err := p.certManager.GetCertificate(&tls.ClientHelloInfo{ServerName: p.domain})
		if err != nil {
			return err
		}
		if cert == nil {
			return autocert.ErrCacheMiss
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	if err := retryWithBackoff(ctx, 10, 2*time.Second, time.Minute, getCertificate); err != nil {
		logger.Error("Failed to obtain certificate", zap.String("domain", p.domain), zap.Error(err))
	}
}
