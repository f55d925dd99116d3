// Package gateway holds the decisions behind every folder and file
// operation: validation, provider calls and error mapping. Authentication
// and the admin gate are applied by the HTTP layer before it is called.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jmanurodriguez/cloudinary-portal/api"
	"github.com/jmanurodriguez/cloudinary-portal/cloudinary"
	"github.com/jmanurodriguez/cloudinary-portal/config"
	"github.com/jmanurodriguez/cloudinary-portal/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const placeholderPublicID = "temp_folder_creation"

type Service struct {
	storage      Storage
	creationMode string
	maxResults   int
}

func NewService(storage Storage, creationMode string, maxResults int) *Service {
	if creationMode == "" {
		creationMode = config.FolderCreationDirect
	}
	if maxResults <= 0 {
		maxResults = 500
	}
	return &Service{storage: storage, creationMode: creationMode, maxResults: maxResults}
}

func ProvideService(client *cloudinary.Client, cfg *config.AppConfig) *Service {
	return NewService(client, cfg.FolderCreation, cfg.MaxResults)
}

func invalidFolderName() *api.Error {
	return api.Validation("Nombre de carpeta inválido",
		"El nombre debe contener solo letras, números, guiones y guiones bajos (máximo 100 caracteres)")
}

// ListFolders returns the top level folders. Entries without a name are
// skipped.
func (s *Service) ListFolders(ctx context.Context) ([]Folder, error) {
	raw, err := s.storage.RootFolders(ctx)
	if err != nil {
		return nil, api.Provider("Error al obtener la lista de carpetas", err)
	}

	folders := make([]Folder, 0, len(raw))
	for _, f := range raw {
		if f.Name == "" {
			continue
		}
		folders = append(folders, Folder{Name: f.Name, Path: f.Path})
	}
	return folders, nil
}

// ListFiles merges the image and raw resources under folder, newest first.
func (s *Service) ListFiles(ctx context.Context, folder string) ([]File, error) {
	if folder == "" {
		return nil, api.Validation("Nombre de carpeta inválido", "")
	}

	prefix := folder + "/"
	kinds := []cloudinary.ResourceType{cloudinary.Image, cloudinary.Raw}
	results := make([][]cloudinary.Asset, len(kinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			assets, err := s.storage.Assets(gctx, kind, prefix, s.maxResults)
			if err != nil {
				return fmt.Errorf("listing %s resources: %w", kind, err)
			}
			results[i] = assets
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, api.Provider("Error al obtener los archivos de la carpeta", err)
	}

	files := make([]File, 0, len(results[0])+len(results[1]))
	for i, kind := range kinds {
		for _, a := range results[i] {
			url, err := s.storage.SignedDeliveryURL(a.PublicID, kind)
			if err != nil {
				logger.Warn("Failed signing delivery url",
					zap.String("publicId", a.PublicID), zap.Error(err))
				url = a.SecureURL
			}
			files = append(files, newFile(a, kind, url))
		}
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].CreatedAt.After(files[j].CreatedAt)
	})
	return files, nil
}

// CreateFolder creates a top level folder, directly or through a
// placeholder upload depending on the configured mode.
func (s *Service) CreateFolder(ctx context.Context, name string) (Folder, error) {
	if !ValidFolderName(name) {
		return Folder{}, invalidFolderName()
	}

	if s.creationMode == config.FolderCreationPlaceholder {
		return s.createWithPlaceholder(ctx, name)
	}

	created, err := s.storage.CreateFolder(ctx, name)
	if err != nil {
		return Folder{}, mapProviderError(err, createFolderTitles)
	}
	return Folder{Name: created.Name, Path: created.Path}, nil
}

// createWithPlaceholder materialises the folder by uploading a throwaway
// raw file into it and destroying that file again.
func (s *Service) createWithPlaceholder(ctx context.Context, name string) (Folder, error) {
	existing, err := s.storage.RootFolders(ctx)
	if err != nil {
		return Folder{}, api.Provider(createFolderTitles.failure, err)
	}
	for _, f := range existing {
		if f.Name == name {
			return Folder{}, api.Conflict("La carpeta ya existe", "Ya existe una carpeta con ese nombre")
		}
	}

	publicID, err := s.storage.UploadPlaceholder(ctx, name, placeholderPublicID)
	if err != nil {
		return Folder{}, mapProviderError(err, createFolderTitles)
	}

	if err := s.storage.Destroy(ctx, publicID, cloudinary.Raw); err != nil {
		// the folder exists at this point; only the placeholder is left behind
		logger.Warn("Failed removing folder placeholder",
			zap.String("folder", name), zap.String("publicId", publicID), zap.Error(err))
	}
	return Folder{Name: name, Path: name}, nil
}

// DeleteFolder removes every image and raw resource under the folder and
// then the folder itself. Both partitions are always attempted; the folder
// is only removed when both succeeded. Partial progress is not undone.
func (s *Service) DeleteFolder(ctx context.Context, name string) (DeleteFolderResult, error) {
	if !ValidFolderName(name) {
		return DeleteFolderResult{}, invalidFolderName()
	}

	prefix := name + "/"
	result := DeleteFolderResult{Name: name}

	var errs []error
	for _, kind := range []cloudinary.ResourceType{cloudinary.Image, cloudinary.Raw} {
		n, err := s.storage.DeleteAssetsByPrefix(ctx, kind, prefix)
		if err != nil {
			errs = append(errs, fmt.Errorf("deleting %s resources: %w", kind, err))
			continue
		}
		result.Deleted += n
	}
	if err := errors.Join(errs...); err != nil {
		return result, mapProviderError(err, deleteFolderTitles)
	}

	if err := s.storage.DeleteFolder(ctx, name); err != nil {
		return result, mapProviderError(err, deleteFolderTitles)
	}
	return result, nil
}

// DeleteFile deletes a resource whose type is unknown to the caller. It is
// tried as an image first and, only if that attempt fails, as a raw file.
func (s *Service) DeleteFile(ctx context.Context, publicID string) error {
	if publicID == "" {
		return api.Validation("Public ID inválido", "")
	}

	imageErr := s.storage.Destroy(ctx, publicID, cloudinary.Image)
	if imageErr == nil {
		return nil
	}

	rawErr := s.storage.Destroy(ctx, publicID, cloudinary.Raw)
	if rawErr == nil {
		return nil
	}

	logger.Debug("File not deleted as image nor raw",
		zap.String("publicId", publicID), zap.NamedError("imageErr", imageErr), zap.NamedError("rawErr", rawErr))
	return mapProviderError(rawErr, deleteFileTitles)
}
