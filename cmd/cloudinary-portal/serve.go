package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jmanurodriguez/cloudinary-portal/admin"
	"github.com/jmanurodriguez/cloudinary-portal/auth"
	"github.com/jmanurodriguez/cloudinary-portal/cloudinary"
	"github.com/jmanurodriguez/cloudinary-portal/config"
	"github.com/jmanurodriguez/cloudinary-portal/controller"
	"github.com/jmanurodriguez/cloudinary-portal/dotenv"
	"github.com/jmanurodriguez/cloudinary-portal/gateway"
	"github.com/jmanurodriguez/cloudinary-portal/logger"
	"github.com/jmanurodriguez/cloudinary-portal/secrets"
	"github.com/jmanurodriguez/cloudinary-portal/server"
	"github.com/jmanurodriguez/cloudinary-portal/upload"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Serve runs the API until SIGINT or SIGTERM.
func Serve(ctx context.Context, configPath string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := LoadConfig(ctx, configPath)
	if err != nil {
		return err
	}

	srv, err := BuildServer(cfg)
	if err != nil {
		return err
	}

	logger.Info("Cloudinary portal configured",
		zap.String("cloud", cfg.CloudinaryCloudName),
		zap.String("frontend", cfg.FrontendUrl),
		zap.String("folderCreation", cfg.FolderCreation),
		zap.Bool("ssl", cfg.Domain != ""))
	return srv.Serve(ctx)
}

// LoadConfig reads INI and env, pulls secrets from the configured secret
// store and then reads env again so those secrets land in the config.
func LoadConfig(ctx context.Context, configPath string) (*config.AppConfig, error) {
	cfg := &config.AppConfig{}
	if err := config.LoadConfig(configPath, cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	loaded, err := secrets.Load(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("loading secrets: %w", err)
	}
	if loaded {
		cfg = &config.AppConfig{}
		if err := config.LoadConfig(configPath, cfg); err != nil {
			return nil, fmt.Errorf("reloading config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func corsFor(cfg *config.AppConfig) *cors.Cors {
	var origins []string
	for _, o := range strings.Split(cfg.FrontendUrl, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{server.RequestIDHeader},
		AllowCredentials: true,
	})
}

// BuildServer wires every component into a listening, not yet serving,
// server.
func BuildServer(cfg *config.AppConfig) (*server.BootServer, error) {
	b := server.New().
		HTTPPort(cfg.Addr()).
		CORS(corsFor(cfg)).
		Provide(cfg).
		ProvideFunc(cloudinary.ProvideClient).
		ProvideFunc(gateway.ProvideService).
		ProvideFunc(upload.ProvideIssuer).
		ProvideFunc(admin.ProvidePolicy).
		ProvideFunc(auth.ProvideVerifier).
		ProvideFunc(server.ProvideRateLimiter).
		Use(func(v *auth.Verifier) func(http.Handler) http.Handler { return v.Middleware }).
		RegisterController(controller.ProvideFolderController).
		RegisterController(controller.ProvideFileController).
		RegisterController(controller.ProvideUploadController).
		RegisterController(controller.ProvideAdminController)

	if cfg.Domain != "" {
		b.EnableSSL(server.DirCache(cfg.SslCacheDir, cfg.Domain))
	}
	return b.Build()
}

// MintToken prints a token signed with ACCESS-SECRET from env or .env.
func MintToken(out io.Writer, userId, email string, ttl time.Duration) error {
	if err := dotenv.LoadEnv(); err != nil {
		return err
	}
	token, err := auth.GetToken(userId, email, ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}

// PrintSignature prints the same payload POST /api/sign-upload returns.
func PrintSignature(ctx context.Context, out io.Writer, configPath, folder, resourceType string) error {
	cfg, err := LoadConfig(ctx, configPath)
	if err != nil {
		return err
	}

	sig, err := upload.ProvideIssuer(cloudinary.ProvideClient(cfg)).Issue(folder, resourceType)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(sig)
}
