package secrets

import (
	"context"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/api/option"
)

// Fetch reads the latest version of a named secret from GCP Secret Manager.
// Used in production to source the JWT signing key instead of the
// environment.
func Fetch(ctx context.Context, projectID, name string, opts ...option.ClientOption) (string, error) {
	if projectID == "" {
		return "", fmt.Errorf("GCP project ID is not set")
	}
	client, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create Secret Manager client: %w", err)
	}
	defer client.Close()

	resourceName := fmt.Sprintf("projects/%s/secrets/%s/versions/latest", projectID, name)
	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: resourceName,
	})
	if err != nil {
		return "", fmt.Errorf("failed to access secret version: %w", err)
	}
	return string(result.Payload.Data), nil
}
