// Package secrets preloads secrets from a cloud secret store into the
// process environment, before the environment part of the config is read.
package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jmanurodriguez/cloudinary-portal/config"
	"github.com/jmanurodriguez/cloudinary-portal/logger"
	"go.uber.org/zap"
)

const (
	SourceAzure = "azure"
	SourceGCP   = "gcp"
)

type Loader interface {
	LoadSecretsIntoEnv(ctx context.Context) error
}

// Provide returns the loader selected by secrets_source, or nil when no
// secret store is configured.
func Provide(cfg *config.AppConfig) (Loader, error) {
	switch strings.ToLower(cfg.SecretsSource) {
	case "":
		return nil, nil
	case SourceAzure:
		if cfg.AzureKeyVaultName == "" {
			return nil, fmt.Errorf("azure_key_vault_name config not set")
		}
		return &AzureKeyVault{vaultName: cfg.AzureKeyVaultName}, nil
	case SourceGCP:
		if cfg.GcpProjectId == "" {
			return nil, fmt.Errorf("gcp_project_id config not set")
		}
		return &GCPSecretManager{projectID: cfg.GcpProjectId}, nil
	default:
		return nil, fmt.Errorf("unknown secrets_source %q", cfg.SecretsSource)
	}
}

// Load runs the configured loader, if any. It reports whether anything was
// loaded so the caller can re-read the environment.
func Load(ctx context.Context, cfg *config.AppConfig) (bool, error) {
	loader, err := Provide(cfg)
	if err != nil || loader == nil {
		return false, err
	}
	if err := loader.LoadSecretsIntoEnv(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// setEnv exports a secret. Secret stores do not allow '_' in names, so a
// dashed name is also exported with underscores (CLOUDINARY-API-SECRET
// becomes CLOUDINARY_API_SECRET as well).
func setEnv(name, value string) {
	_ = os.Setenv(name, value)
	if alt := strings.ReplaceAll(name, "-", "_"); alt != name {
		_ = os.Setenv(alt, value)
	}
}

func logLoaded(store string, names []string) {
	logger.Info("Successfully loaded secrets into environment variables.",
		zap.String("store", store), zap.Strings("secrets", names))
}
