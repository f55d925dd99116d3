package gateway

import (
	"context"
	"strings"
	"time"

	"github.com/jmanurodriguez/cloudinary-portal/cloudinary"
)

// Storage is the provider surface the gateway depends on. *cloudinary.Client
// implements it.
type Storage interface {
	RootFolders(ctx context.Context) ([]cloudinary.Folder, error)
	CreateFolder(ctx context.Context, path string) (cloudinary.Folder, error)
	DeleteFolder(ctx context.Context, path string) error
	Assets(ctx context.Context, resourceType cloudinary.ResourceType, prefix string, maxResults int) ([]cloudinary.Asset, error)
	DeleteAssetsByPrefix(ctx context.Context, resourceType cloudinary.ResourceType, prefix string) (int, error)
	Destroy(ctx context.Context, publicID string, resourceType cloudinary.ResourceType) error
	UploadPlaceholder(ctx context.Context, folder, publicID string) (string, error)
	SignedDeliveryURL(publicID string, resourceType cloudinary.ResourceType) (string, error)
}

var _ Storage = (*cloudinary.Client)(nil)

type Folder struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type File struct {
	PublicID     string    `json:"public_id"`
	Filename     string    `json:"filename"`
	Format       string    `json:"format"`
	ResourceType string    `json:"resource_type"`
	Type         string    `json:"type"`
	Bytes        int64     `json:"bytes"`
	URL          string    `json:"url"`
	CreatedAt    time.Time `json:"created_at"`
	Width        int       `json:"width,omitempty"`
	Height       int       `json:"height,omitempty"`
	Folder       string    `json:"folder"`
}

type DeleteFolderResult struct {
	Name    string
	Deleted int
}

func newFile(a cloudinary.Asset, kind cloudinary.ResourceType, url string) File {
	f := File{
		PublicID:     a.PublicID,
		Filename:     a.PublicID[strings.LastIndex(a.PublicID, "/")+1:],
		Format:       a.Format,
		ResourceType: string(a.ResourceType),
		Type:         a.Type,
		Bytes:        a.Bytes,
		URL:          url,
		CreatedAt:    a.CreatedAt,
		Folder:       a.Folder,
	}
	if f.ResourceType == "" {
		f.ResourceType = string(kind)
	}
	if f.Folder == "" {
		f.Folder = a.AssetFolder
	}
	// raw resources carry no dimensions
	if kind == cloudinary.Image {
		f.Width = a.Width
		f.Height = a.Height
	}
	return f
}
