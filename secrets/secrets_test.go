package secrets

import (
	"context"
	"errors"
	"os"
	"testing"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/googleapis/gax-go/v2"
	"github.com/jmanurodriguez/cloudinary-portal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/iterator"
)

func unsetAfter(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestProvide(t *testing.T) {
	l, err := Provide(&config.AppConfig{})
	assert.NoError(t, err)
	assert.Nil(t, l)

	l, err = Provide(&config.AppConfig{SecretsSource: "Azure", AzureKeyVaultName: "kv"})
	require.NoError(t, err)
	assert.IsType(t, &AzureKeyVault{}, l)

	l, err = Provide(&config.AppConfig{SecretsSource: "gcp", GcpProjectId: "p"})
	require.NoError(t, err)
	assert.IsType(t, &GCPSecretManager{}, l)

	_, err = Provide(&config.AppConfig{SecretsSource: "azure"})
	assert.Error(t, err)
	_, err = Provide(&config.AppConfig{SecretsSource: "gcp"})
	assert.Error(t, err)
	_, err = Provide(&config.AppConfig{SecretsSource: "vault"})
	assert.Error(t, err)
}

func TestLoad_NoSource(t *testing.T) {
	loaded, err := Load(context.Background(), &config.AppConfig{})
	assert.NoError(t, err)
	assert.False(t, loaded)
}

/*──────────────────────────── Azure Key Vault ────────────────────────────*/

type fakeKeyVault struct {
	secrets map[string]string
	failOn  string
}

func (f *fakeKeyVault) NewListSecretPropertiesPager(*azsecrets.ListSecretPropertiesOptions) *runtime.Pager[azsecrets.ListSecretPropertiesResponse] {
	done := false
	return runtime.NewPager(runtime.PagingHandler[azsecrets.ListSecretPropertiesResponse]{
		More: func(azsecrets.ListSecretPropertiesResponse) bool { return !done },
		Fetcher: func(context.Context, *azsecrets.ListSecretPropertiesResponse) (azsecrets.ListSecretPropertiesResponse, error) {
			done = true
			var props []*azsecrets.SecretProperties
			for name := range f.secrets {
				id := azsecrets.ID("https://kv.vault.azure.net/secrets/" + name + "/v1")
				props = append(props, &azsecrets.SecretProperties{ID: &id})
			}
			return azsecrets.ListSecretPropertiesResponse{
				SecretPropertiesListResult: azsecrets.SecretPropertiesListResult{Value: props},
			}, nil
		},
	})
}

func (f *fakeKeyVault) GetSecret(_ context.Context, name, _ string, _ *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error) {
	if name == f.failOn {
		return azsecrets.GetSecretResponse{}, errors.New("forbidden")
	}
	val := f.secrets[name]
	return azsecrets.GetSecretResponse{Secret: azsecrets.Secret{Value: &val}}, nil
}

func TestAzureKeyVault_LoadSecretsIntoEnv(t *testing.T) {
	unsetAfter(t, "CLOUDINARY-API-SECRET", "CLOUDINARY_API_SECRET", "ACCESS-SECRET", "ACCESS_SECRET", "BROKEN")

	kv := &AzureKeyVault{vaultName: "kv", client: &fakeKeyVault{
		secrets: map[string]string{"CLOUDINARY-API-SECRET": "shh", "ACCESS-SECRET": "jwt", "BROKEN": "x"},
		failOn:  "BROKEN",
	}}

	require.NoError(t, kv.LoadSecretsIntoEnv(context.Background()))
	assert.Equal(t, "shh", os.Getenv("CLOUDINARY-API-SECRET"))
	assert.Equal(t, "shh", os.Getenv("CLOUDINARY_API_SECRET"))
	assert.Equal(t, "jwt", os.Getenv("ACCESS-SECRET"))
	_, ok := os.LookupEnv("BROKEN")
	assert.False(t, ok)
}

func TestAzureKeyVault_CredentialFailure(t *testing.T) {
	orig := newDefaultCred
	newDefaultCred = func() (*azidentity.DefaultAzureCredential, error) { return nil, errors.New("no identity") }
	t.Cleanup(func() { newDefaultCred = orig })

	err := (&AzureKeyVault{vaultName: "kv"}).LoadSecretsIntoEnv(context.Background())
	assert.ErrorContains(t, err, "no identity")
}

/*──────────────────────────── GCP Secret Manager ─────────────────────────*/

type sliceIterator struct {
	items []*secretmanagerpb.Secret
}

func (s *sliceIterator) Next() (*secretmanagerpb.Secret, error) {
	if len(s.items) == 0 {
		return nil, iterator.Done
	}
	next := s.items[0]
	s.items = s.items[1:]
	return next, nil
}

type stubSecretManager struct {
	values map[string]string // full name ➜ value
	failOn string
	closed bool
}

func (s *stubSecretManager) ListSecrets(_ context.Context, req *secretmanagerpb.ListSecretsRequest, _ ...gax.CallOption) secretIterator {
	it := &sliceIterator{}
	for name := range s.values {
		it.items = append(it.items, &secretmanagerpb.Secret{Name: req.Parent + "/secrets/" + name})
	}
	return it
}

func (s *stubSecretManager) AccessSecretVersion(_ context.Context, req *secretmanagerpb.AccessSecretVersionRequest, _ ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error) {
	for name, v := range s.values {
		if req.Name == "projects/p/secrets/"+name+"/versions/latest" {
			if name == s.failOn {
				return nil, errors.New("permission denied")
			}
			return &secretmanagerpb.AccessSecretVersionResponse{
				Payload: &secretmanagerpb.SecretPayload{Data: []byte(v)},
			}, nil
		}
	}
	return nil, errors.New("not found")
}

func (s *stubSecretManager) Close() error { s.closed = true; return nil }

func withSecretManager(t *testing.T, stub *stubSecretManager) {
	t.Helper()
	orig := newSecretManagerClient
	newSecretManagerClient = func(context.Context) (secretManagerClient, error) { return stub, nil }
	t.Cleanup(func() { newSecretManagerClient = orig })
}

func TestGCPSecretManager_LoadSecretsIntoEnv(t *testing.T) {
	unsetAfter(t, "CLERK_SECRET_KEY", "ADMIN-EMAILS", "ADMIN_EMAILS")
	stub := &stubSecretManager{values: map[string]string{
		"CLERK_SECRET_KEY": "sk",
		"ADMIN-EMAILS":     "ana@example.com",
	}}
	withSecretManager(t, stub)

	loaded, err := Load(context.Background(), &config.AppConfig{SecretsSource: "gcp", GcpProjectId: "p"})
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Equal(t, "sk", os.Getenv("CLERK_SECRET_KEY"))
	assert.Equal(t, "ana@example.com", os.Getenv("ADMIN_EMAILS"))
	assert.True(t, stub.closed)
}

func TestGCPSecretManager_AccessFailure(t *testing.T) {
	unsetAfter(t, "BROKEN")
	withSecretManager(t, &stubSecretManager{values: map[string]string{"BROKEN": "x"}, failOn: "BROKEN"})

	err := (&GCPSecretManager{projectID: "p"}).LoadSecretsIntoEnv(context.Background())
	assert.ErrorContains(t, err, "permission denied")
}

func TestGCPSecretManager_ClientFailure(t *testing.T) {
	orig := newSecretManagerClient
	newSecretManagerClient = func(context.Context) (secretManagerClient, error) { return nil, errors.New("no adc") }
	t.Cleanup(func() { newSecretManagerClient = orig })

	err := (&GCPSecretManager{projectID: "p"}).LoadSecretsIntoEnv(context.Background())
	assert.ErrorContains(t, err, "no adc")
}
