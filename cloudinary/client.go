// Package cloudinary adapts the Cloudinary Go SDK to what the portal needs:
// folders, prefix listings, deletions, request signing and signed delivery
// URLs. Every call is counted in cloudinary_requests_total.
package cloudinary

import (
	"context"
	"fmt"
	"time"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/jmanurodriguez/cloudinary-portal/config"
	"github.com/jmanurodriguez/cloudinary-portal/logger"
	"go.uber.org/zap"
)

type ResourceType string

const (
	Image ResourceType = "image"
	Raw   ResourceType = "raw"
	Video ResourceType = "video"
	Auto  ResourceType = "auto"
)

const defaultTimeout = 30 * time.Second

type Client struct {
	sdk *cld.Cloudinary

	cloudName string
	apiKey    string
	apiSecret string
	timeout   time.Duration
}

type Option func(*Client)

// WithAPIURL sends Admin and Upload API calls to another host.
func WithAPIURL(u string) Option {
	return func(c *Client) {
		c.sdk.Admin.Config.API.UploadPrefix = u
		c.sdk.Upload.Config.API.UploadPrefix = u
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func NewClient(cloudName, apiKey, apiSecret string, opts ...Option) (*Client, error) {
	sdk, err := cld.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("configuring cloudinary: %w", err)
	}
	sdk.Config.URL.Secure = true

	c := &Client{
		sdk:       sdk,
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		timeout:   defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func ProvideClient(cfg *config.AppConfig) *Client {
	c, err := NewClient(cfg.CloudinaryCloudName, cfg.CloudinaryApiKey, cfg.CloudinaryApiSecret)
	if err != nil {
		logger.Fatal("Failed creating cloudinary client", zap.Error(err))
		return nil
	}
	return c
}

func (c *Client) CloudName() string { return c.cloudName }
func (c *Client) APIKey() string    { return c.apiKey }

// call runs one SDK request under the client timeout and records it. fn
// returns the error message the provider put in the response body, if any.
func (c *Client) call(ctx context.Context, op string, fn func(ctx context.Context) (string, error)) (err error) {
	defer func() { observeRequest(op, err) }()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	message, err := fn(ctx)
	if err != nil && ctx.Err() != nil {
		return fmt.Errorf("cloudinary %s: %w", op, ctx.Err())
	}
	return providerError(op, err, message)
}
