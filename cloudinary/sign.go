package cloudinary

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/cloudinary/cloudinary-go/v2/api"
)

// Sign signs params with the account secret the same way the Upload API
// verifies them. It fails only when the client has no secret.
func (c *Client) Sign(params url.Values) (string, error) {
	if c.apiSecret == "" {
		return "", errors.New("cloudinary api secret is not configured")
	}
	return api.SignParameters(params, c.apiSecret)
}

// SignedDeliveryURL builds a signed https delivery URL for an uploaded
// resource.
func (c *Client) SignedDeliveryURL(publicID string, resourceType ResourceType) (string, error) {
	build := c.sdk.Image
	switch resourceType {
	case Raw:
		build = c.sdk.File
	case Video:
		build = c.sdk.Video
	}

	a, err := build(publicID)
	if err != nil {
		return "", fmt.Errorf("building %s url for %s: %w", resourceType, publicID, err)
	}
	a.Config.URL.Secure = true
	a.Config.URL.SignURL = true
	return a.String()
}
