package cloudinary

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
)

// maxRounds bounds cursor and partial-deletion loops.
const maxRounds = 50

type Folder struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type Asset struct {
	PublicID     string       `json:"public_id"`
	Format       string       `json:"format"`
	Version      int64        `json:"version"`
	ResourceType ResourceType `json:"resource_type"`
	Type         string       `json:"type"`
	CreatedAt    time.Time    `json:"created_at"`
	Bytes        int64        `json:"bytes"`
	Width        int          `json:"width"`
	Height       int          `json:"height"`
	Folder       string       `json:"folder"`
	AssetFolder  string       `json:"asset_folder"`
	URL          string       `json:"url"`
	SecureURL    string       `json:"secure_url"`
}

// RootFolders returns every top level folder, following pagination cursors.
func (c *Client) RootFolders(ctx context.Context) ([]Folder, error) {
	folders := []Folder{}
	cursor := ""
	for round := 0; round < maxRounds; round++ {
		next := ""
		err := c.call(ctx, "root_folders", func(ctx context.Context) (string, error) {
			res, err := c.sdk.Admin.RootFolders(ctx, admin.RootFoldersParams{MaxResults: 500, NextCursor: cursor})
			if err != nil || res == nil {
				return "", err
			}
			for _, f := range res.Folders {
				folders = append(folders, Folder{Name: f.Name, Path: f.Path})
			}
			next = res.NextCursor
			return res.Error.Message, nil
		})
		if err != nil {
			return nil, err
		}
		if next == "" {
			return folders, nil
		}
		cursor = next
	}
	return folders, nil
}

// CreateFolder creates an empty folder. An existing folder comes back as an
// *Error with status 409.
func (c *Client) CreateFolder(ctx context.Context, path string) (Folder, error) {
	folder := Folder{Name: path, Path: path}
	err := c.call(ctx, "create_folder", func(ctx context.Context) (string, error) {
		res, err := c.sdk.Admin.CreateFolder(ctx, admin.CreateFolderParams{Folder: path})
		if err != nil || res == nil {
			return "", err
		}
		if res.Name != "" {
			folder.Name = res.Name
		}
		if res.Path != "" {
			folder.Path = res.Path
		}
		return res.Error.Message, nil
	})
	if err != nil {
		return Folder{}, err
	}
	return folder, nil
}

// DeleteFolder removes an empty folder.
func (c *Client) DeleteFolder(ctx context.Context, path string) error {
	return c.call(ctx, "delete_folder", func(ctx context.Context) (string, error) {
		res, err := c.sdk.Admin.DeleteFolder(ctx, admin.DeleteFolderParams{Folder: path})
		if err != nil || res == nil {
			return "", err
		}
		return res.Error.Message, nil
	})
}

// Assets lists up to maxResults uploaded assets of one resource type whose
// public id starts with prefix.
func (c *Client) Assets(ctx context.Context, resourceType ResourceType, prefix string, maxResults int) ([]Asset, error) {
	assets := []Asset{}
	err := c.call(ctx, "resources_"+string(resourceType), func(ctx context.Context) (string, error) {
		res, err := c.sdk.Admin.Assets(ctx, admin.AssetsParams{
			AssetType:    api.AssetType(resourceType),
			DeliveryType: "upload",
			Prefix:       prefix,
			MaxResults:   maxResults,
		})
		if err != nil || res == nil {
			return "", err
		}
		for _, a := range res.Assets {
			assets = append(assets, Asset{
				PublicID:     a.PublicID,
				Format:       string(a.Format),
				Version:      int64(a.Version),
				ResourceType: ResourceType(a.AssetType),
				Type:         string(a.Type),
				CreatedAt:    a.CreatedAt,
				Bytes:        int64(a.Bytes),
				Width:        int(a.Width),
				Height:       int(a.Height),
				Folder:       folderOf(a.PublicID),
				URL:          a.URL,
				SecureURL:    a.SecureURL,
			})
		}
		return res.Error.Message, nil
	})
	if err != nil {
		return nil, err
	}
	return assets, nil
}

// DeleteAssetsByPrefix deletes the uploaded assets of one resource type
// whose public id starts with prefix and returns how many were removed. The
// provider deletes in batches and flags a partial result while more remain,
// so the call is repeated until it reports completion.
func (c *Client) DeleteAssetsByPrefix(ctx context.Context, resourceType ResourceType, prefix string) (int, error) {
	op := "delete_resources_" + string(resourceType)
	count := 0
	for round := 0; round < maxRounds; round++ {
		partial := false
		err := c.call(ctx, op, func(ctx context.Context) (string, error) {
			res, err := c.sdk.Admin.DeleteAssetsByPrefix(ctx, admin.DeleteAssetsByPrefixParams{
				AssetType:    api.AssetType(resourceType),
				DeliveryType: api.DeliveryType("upload"),
				Prefix:       []string{prefix},
			})
			if err != nil || res == nil {
				return "", err
			}
			for _, status := range res.Deleted {
				if status == "deleted" {
					count++
				}
			}
			partial = res.Partial
			return res.Error.Message, nil
		})
		if err != nil {
			return count, err
		}
		if !partial {
			return count, nil
		}
	}
	return count, &Error{
		Operation:  op,
		StatusCode: http.StatusBadGateway,
		Message:    fmt.Sprintf("deletion of %q still partial after %d rounds", prefix, maxRounds),
	}
}

func folderOf(publicID string) string {
	if i := strings.LastIndex(publicID, "/"); i >= 0 {
		return publicID[:i]
	}
	return ""
}
