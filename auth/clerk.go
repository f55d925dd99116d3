package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/user"
)

// ClerkClient reads user profiles from the Clerk Backend API.
type ClerkClient struct {
	users *user.Client
}

// NewClerkClient authenticates with secretKey. baseURL is only set in tests;
// empty means the Clerk default.
func NewClerkClient(secretKey, baseURL string) *ClerkClient {
	backend := clerk.BackendConfig{
		Key:        clerk.String(secretKey),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
	if baseURL != "" {
		backend.URL = clerk.String(baseURL)
	}
	return &ClerkClient{users: user.NewClient(&clerk.ClientConfig{BackendConfig: backend})}
}

// PrimaryEmail returns the user's primary email address, or the first one
// listed when no primary is set.
func (c *ClerkClient) PrimaryEmail(ctx context.Context, userID string) (string, error) {
	u, err := c.users.Get(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("clerk user lookup: %w", err)
	}

	var first string
	for _, e := range u.EmailAddresses {
		if e == nil {
			continue
		}
		if u.PrimaryEmailAddressID != nil && e.ID == *u.PrimaryEmailAddressID {
			return e.EmailAddress, nil
		}
		if first == "" {
			first = e.EmailAddress
		}
	}
	if first != "" {
		return first, nil
	}
	return "", fmt.Errorf("user %s has no email address", userID)
}
