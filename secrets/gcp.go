package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/jmanurodriguez/cloudinary-portal/logger"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
)

type secretIterator interface {
	Next() (*secretmanagerpb.Secret, error)
}

type secretManagerClient interface {
	ListSecrets(context.Context, *secretmanagerpb.ListSecretsRequest, ...gax.CallOption) secretIterator
	AccessSecretVersion(context.Context, *secretmanagerpb.AccessSecretVersionRequest, ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
	Close() error
}

// sdkClient narrows the SDK client's concrete iterator type.
type sdkClient struct{ *secretmanager.Client }

func (c sdkClient) ListSecrets(ctx context.Context, req *secretmanagerpb.ListSecretsRequest, opts ...gax.CallOption) secretIterator {
	return c.Client.ListSecrets(ctx, req, opts...)
}

var newSecretManagerClient = func(ctx context.Context) (secretManagerClient, error) {
	c, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return sdkClient{c}, nil
}

type GCPSecretManager struct {
	projectID string
}

func (g *GCPSecretManager) LoadSecretsIntoEnv(ctx context.Context) error {
	logger.Info("Loading GCP secrets into environment variables.", zap.String("project", g.projectID))

	client, err := newSecretManagerClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create secretmanager client: %w", err)
	}
	defer client.Close()

	it := client.ListSecrets(ctx, &secretmanagerpb.ListSecretsRequest{
		Parent: fmt.Sprintf("projects/%s", g.projectID),
	})

	var secretList []string
	for {
		secret, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to list secrets: %w", err)
		}

		result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
			Name: fmt.Sprintf("%s/versions/latest", secret.Name),
		})
		if err != nil {
			return fmt.Errorf("failed to access secret version for %s: %w", secret.Name, err)
		}

		secretName := secret.Name[strings.LastIndex(secret.Name, "/")+1:]
		setEnv(secretName, string(result.GetPayload().GetData()))
		secretList = append(secretList, secretName)
	}

	logLoaded("gcp", secretList)
	return nil
}
