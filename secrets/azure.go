package secrets

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/jmanurodriguez/cloudinary-portal/logger"
	"go.uber.org/zap"
)

type keyVaultClient interface {
	NewListSecretPropertiesPager(*azsecrets.ListSecretPropertiesOptions) *runtime.Pager[azsecrets.ListSecretPropertiesResponse]
	GetSecret(context.Context, string, string, *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error)
}

// factory variables – default to real SDK functions
var (
	newDefaultCred = func() (*azidentity.DefaultAzureCredential, error) {
		return azidentity.NewDefaultAzureCredential(nil)
	}
	newKVClient = func(url string, cred *azidentity.DefaultAzureCredential) (keyVaultClient, error) {
		return azsecrets.NewClient(url, cred, nil)
	}
)

type AzureKeyVault struct {
	vaultName string
	client    keyVaultClient
}

func (a *AzureKeyVault) ensureClient() error {
	if a.client != nil {
		return nil
	}

	cred, err := newDefaultCred()
	if err != nil {
		return fmt.Errorf("failed to obtain a credential: %w", err)
	}

	client, err := newKVClient(fmt.Sprintf("https://%s.vault.azure.net/", a.vaultName), cred)
	if err != nil {
		return fmt.Errorf("failed to connect to key vault: %w", err)
	}
	a.client = client
	return nil
}

func (a *AzureKeyVault) LoadSecretsIntoEnv(ctx context.Context) error {
	logger.Info("Loading Azure Keyvault secrets into environment variables.", zap.String("vault", a.vaultName))

	if err := a.ensureClient(); err != nil {
		return err
	}

	pager := a.client.NewListSecretPropertiesPager(nil)
	var secretList []string

	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to list secrets: %w", err)
		}
		for _, secret := range page.Value {
			if secret.ID == nil || (secret.Attributes != nil && secret.Attributes.Enabled != nil && !*secret.Attributes.Enabled) {
				continue
			}

			resp, err := a.client.GetSecret(ctx, secret.ID.Name(), secret.ID.Version(), nil)
			if err != nil {
				logger.Error("Failed to get secret", zap.String("secret", secret.ID.Name()), zap.Error(err))
				continue
			}
			if resp.Value == nil {
				continue
			}
			setEnv(secret.ID.Name(), *resp.Value)
			secretList = append(secretList, secret.ID.Name())
		}
	}

	logLoaded("azure", secretList)
	return nil
}
