package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeIni(t *testing.T, content string) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), "app.ini")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))
	return tmpFile
}

// isolate clears every variable LoadConfig reads and moves into an empty
// directory so no stray .env is picked up.
func isolate(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"ENV", "PORT", "FRONTEND_URL", "ADMIN_EMAILS", "CLOUDINARY_CLOUD_NAME",
		"CLOUDINARY_API_KEY", "CLOUDINARY_API_SECRET", "TRUSTED_PROXIES",
		"FOLDER_CREATION", "MAX_RESULTS", "ACCESS-SECRET", "CLERK_JWT_KEY",
		"CLERK_SECRET_KEY", "REQUIRE_AUTH_FOR_UPLOAD", "RATE_LIMIT_PER_MINUTE",
		"DOMAIN", "SSL_CACHE_DIR", "SECRETS_SOURCE", "AZURE_KEY_VAULT_NAME", "GCP_PROJECT_ID",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	orig, _ := os.Getwd()
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

func TestLoadConfig_LoadsFromIni(t *testing.T) {
	isolate(t)
	path := writeIni(t, `
port = 8080
frontend_url = https://files.example.com
admin_emails = ana@example.com, luis@example.com
cloudinary_cloud_name = demo
folder_creation = placeholder
max_results = 100
require_auth_for_upload = true
`)

	var cfg AppConfig
	require.NoError(t, LoadConfig(path, &cfg))

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "https://files.example.com", cfg.FrontendUrl)
	assert.Equal(t, "ana@example.com, luis@example.com", cfg.AdminEmails)
	assert.Equal(t, "demo", cfg.CloudinaryCloudName)
	assert.Equal(t, FolderCreationPlaceholder, cfg.FolderCreation)
	assert.Equal(t, 100, cfg.MaxResults)
	assert.True(t, cfg.RequireAuthForUpload)
}

func TestLoadConfig_SectionSelectedByEnv(t *testing.T) {
	isolate(t)
	path := writeIni(t, `
port = 3001
domain =

[dev]
frontend_url = http://localhost:5173

[prod]
frontend_url = https://files.example.com
domain = files.example.com
`)

	t.Setenv("ENV", "prod")
	var cfg AppConfig
	require.NoError(t, LoadConfig(path, &cfg))

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, "https://files.example.com", cfg.FrontendUrl)
	assert.Equal(t, "files.example.com", cfg.Domain)

	t.Setenv("ENV", "dev")
	cfg = AppConfig{}
	require.NoError(t, LoadConfig(path, &cfg))
	assert.Equal(t, "http://localhost:5173", cfg.FrontendUrl)
	assert.Empty(t, cfg.Domain)
}

func TestLoadConfig_SectionSelectedByDotEnv(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(".env", []byte("ENV=prod\n"), 0644))
	path := writeIni(t, `
folder_creation = direct
trusted_proxies = 10.0.0.0/8

[prod]
folder_creation = placeholder
`)

	var cfg AppConfig
	require.NoError(t, LoadConfig(path, &cfg))

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, FolderCreationPlaceholder, cfg.FolderCreation)
	assert.Equal(t, "10.0.0.0/8", cfg.TrustedProxies)
}

func TestLoadConfig_EnvOverridesIni(t *testing.T) {
	isolate(t)
	path := writeIni(t, `
admin_emails = from-ini@example.com
cloudinary_cloud_name = from-ini
`)

	t.Setenv("ADMIN_EMAILS", "from-env@example.com")
	t.Setenv("CLOUDINARY_API_SECRET", "s3cr3t")
	t.Setenv("ACCESS-SECRET", "token-secret")

	var cfg AppConfig
	require.NoError(t, LoadConfig(path, &cfg))

	assert.Equal(t, "from-env@example.com", cfg.AdminEmails)
	assert.Equal(t, "from-ini", cfg.CloudinaryCloudName)
	assert.Equal(t, "s3cr3t", cfg.CloudinaryApiSecret)
	assert.Equal(t, "token-secret", cfg.AccessSecret)
}

func TestLoadConfig_SecretsIgnoredInIni(t *testing.T) {
	isolate(t)
	path := writeIni(t, `
CloudinaryApiSecret = leaked
AccessSecret = leaked
`)

	var cfg AppConfig
	require.NoError(t, LoadConfig(path, &cfg))
	assert.Empty(t, cfg.CloudinaryApiSecret)
	assert.Empty(t, cfg.AccessSecret)
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolate(t)

	var cfg AppConfig
	require.NoError(t, LoadConfig("", &cfg))

	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, "http://localhost:5173", cfg.FrontendUrl)
	assert.Empty(t, cfg.TrustedProxies)
	assert.Equal(t, FolderCreationDirect, cfg.FolderCreation)
	assert.Equal(t, 500, cfg.MaxResults)
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
}

func TestLoadConfig_Errors(t *testing.T) {
	assert.Error(t, LoadConfig("", nil))
	assert.Error(t, LoadConfig(filepath.Join(t.TempDir(), "missing.ini"), &AppConfig{}))
}

func TestValidate(t *testing.T) {
	cfg := AppConfig{FolderCreation: FolderCreationDirect}
	err := cfg.Validate()
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "CLOUDINARY_CLOUD_NAME")
		assert.Contains(t, err.Error(), "CLOUDINARY_API_SECRET")
	}

	cfg.CloudinaryCloudName = "demo"
	cfg.CloudinaryApiKey = "key"
	cfg.CloudinaryApiSecret = "secret"
	assert.NoError(t, cfg.Validate())

	cfg.FolderCreation = "magic"
	assert.Error(t, cfg.Validate())
}
