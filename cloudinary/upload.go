package cloudinary

import (
	"context"
	"net/http"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// placeholderFile is the data URI uploaded to materialise a folder on
// accounts that cannot create empty folders.
const placeholderFile = "data:text/plain;base64,VGVtcG9yYXJ5IGZpbGU="

// Destroy deletes one asset. A missing asset is returned as an *Error with
// status 404.
func (c *Client) Destroy(ctx context.Context, publicID string, resourceType ResourceType) error {
	op := "destroy_" + string(resourceType)

	result := ""
	err := c.call(ctx, op, func(ctx context.Context) (string, error) {
		res, err := c.sdk.Upload.Destroy(ctx, uploader.DestroyParams{
			PublicID:     publicID,
			ResourceType: string(resourceType),
		})
		if err != nil || res == nil {
			return "", err
		}
		result = res.Result
		return res.Error.Message, nil
	})
	if err != nil {
		return err
	}

	switch result {
	case "ok":
		return nil
	case "not found":
		return &Error{Operation: op, StatusCode: http.StatusNotFound, Message: result}
	default:
		return &Error{Operation: op, StatusCode: http.StatusBadGateway, Message: "unexpected destroy result: " + result}
	}
}

// UploadPlaceholder uploads a tiny raw file under folder and returns its
// public id.
func (c *Client) UploadPlaceholder(ctx context.Context, folder, publicID string) (string, error) {
	uploaded := ""
	err := c.call(ctx, "upload_placeholder", func(ctx context.Context) (string, error) {
		res, err := c.sdk.Upload.Upload(ctx, placeholderFile, uploader.UploadParams{
			Folder:       folder,
			PublicID:     publicID,
			ResourceType: "raw",
		})
		if err != nil || res == nil {
			return "", err
		}
		uploaded = res.PublicID
		return res.Error.Message, nil
	})
	if err != nil {
		return "", err
	}
	return uploaded, nil
}
