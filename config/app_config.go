package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-ini/ini"
	"github.com/jmanurodriguez/cloudinary-portal/dotenv"
)

// Note: config and secrets are kept apart.
// Config lives in the INI file and may be committed.
// Secrets (API secret, token keys) are only read from the environment,
// optionally preloaded from Azure Key Vault or GCP Secret Manager.
type AppConfig struct {
	// Runtime environment flag (dev, development, prod). Selects the INI section.
	Env string `ini:"-" env:"ENV"`

	Port        string `ini:"port" env:"PORT"`
	FrontendUrl string `ini:"frontend_url" env:"FRONTEND_URL"`
	AdminEmails string `ini:"admin_emails" env:"ADMIN_EMAILS"`

	// Cloudinary
	CloudinaryCloudName string `ini:"cloudinary_cloud_name" env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryApiKey    string `ini:"-" env:"CLOUDINARY_API_KEY"`
	CloudinaryApiSecret string `ini:"-" env:"CLOUDINARY_API_SECRET"`
	FolderCreation      string `ini:"folder_creation" env:"FOLDER_CREATION"`
	MaxResults          int    `ini:"max_results" env:"MAX_RESULTS"`

	// auth
	AccessSecret   string `ini:"-" env:"ACCESS-SECRET"`
	ClerkJwtKey    string `ini:"-" env:"CLERK_JWT_KEY"`
	ClerkSecretKey string `ini:"-" env:"CLERK_SECRET_KEY"`

	RequireAuthForUpload bool `ini:"require_auth_for_upload" env:"REQUIRE_AUTH_FOR_UPLOAD"`
	RateLimitPerMinute   int  `ini:"rate_limit_per_minute" env:"RATE_LIMIT_PER_MINUTE"`

	// Comma separated IPs or CIDRs of reverse proxies allowed to set
	// X-Forwarded-For. Empty means the peer address is the client.
	TrustedProxies string `ini:"trusted_proxies" env:"TRUSTED_PROXIES"`

	// ssl
	Domain      string `ini:"domain" env:"DOMAIN"`
	SslCacheDir string `ini:"ssl_cache_dir" env:"SSL_CACHE_DIR"`

	// secret stores
	SecretsSource     string `ini:"secrets_source" env:"SECRETS_SOURCE"`
	AzureKeyVaultName string `ini:"azure_key_vault_name" env:"AZURE_KEY_VAULT_NAME"`
	GcpProjectId      string `ini:"gcp_project_id" env:"GCP_PROJECT_ID"`
}

const (
	FolderCreationDirect      = "direct"
	FolderCreationPlaceholder = "placeholder"
)

// Loads config into the target from an INI file and the environment.
// .env is loaded first so ENV may come from it. The default section is
// mapped next, then the section named by ENV, then environment variables
// override both.
// An empty path skips the INI step.
func LoadConfig(path string, target *AppConfig) error {
	if target == nil {
		return errors.New("target cannot be nil")
	}

	if err := dotenv.LoadEnv(); err != nil {
		return err
	}

	if err := LoadIni(path, target); err != nil {
		return err
	}

	if err := env.Parse(target); err != nil {
		return err
	}

	target.applyDefaults()
	return nil
}

// LoadIni maps only the INI part. Used before secrets are fetched, since
// the secret store location itself is INI config.
func LoadIni(path string, target *AppConfig) error {
	if path == "" {
		return nil
	}

	file, err := ini.Load(path)
	if err != nil {
		return err
	}

	if err := file.Section(ini.DefaultSection).MapTo(target); err != nil {
		return err
	}

	runMode := os.Getenv("ENV")
	if runMode != "" && file.HasSection(runMode) {
		if err := file.Section(runMode).MapTo(target); err != nil {
			return err
		}
	}

	return nil
}

func (c *AppConfig) applyDefaults() {
	if c.Port == "" {
		c.Port = "3001"
	}
	if c.FrontendUrl == "" {
		c.FrontendUrl = "http://localhost:5173"
	}
	if c.FolderCreation == "" {
		c.FolderCreation = FolderCreationDirect
	}
	if c.MaxResults <= 0 {
		c.MaxResults = 500
	}
	if c.RateLimitPerMinute <= 0 {
		c.RateLimitPerMinute = 60
	}
	if c.SslCacheDir == "" {
		c.SslCacheDir = "certs"
	}
}

// Validate reports the provider settings the server cannot start without.
func (c *AppConfig) Validate() error {
	var missing []string
	if c.CloudinaryCloudName == "" {
		missing = append(missing, "CLOUDINARY_CLOUD_NAME")
	}
	if c.CloudinaryApiKey == "" {
		missing = append(missing, "CLOUDINARY_API_KEY")
	}
	if c.CloudinaryApiSecret == "" {
		missing = append(missing, "CLOUDINARY_API_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing environment variables: %s", strings.Join(missing, ", "))
	}

	switch c.FolderCreation {
	case FolderCreationDirect, FolderCreationPlaceholder:
	default:
		return fmt.Errorf("unknown folder_creation mode %q", c.FolderCreation)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *AppConfig) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
