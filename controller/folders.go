package controller

import (
	"fmt"
	"net/http"

	"github.com/jmanurodriguez/cloudinary-portal/admin"
	"github.com/jmanurodriguez/cloudinary-portal/api"
	"github.com/jmanurodriguez/cloudinary-portal/gateway"
	"github.com/jmanurodriguez/cloudinary-portal/logger"
	"github.com/jmanurodriguez/cloudinary-portal/server"
	"go.uber.org/zap"
)

type FolderController struct {
	service *gateway.Service
	policy  *admin.Policy
	limiter *server.RateLimiter
}

func ProvideFolderController(service *gateway.Service, policy *admin.Policy, limiter *server.RateLimiter) *FolderController {
	return &FolderController{service: service, policy: policy, limiter: limiter}
}

func (c *FolderController) Routes() []server.Route {
	return []server.Route{
		{Pattern: "/api/folders", Method: http.MethodGet, Handler: c.list},
		{Pattern: "/api/folders/{folderName}", Method: http.MethodGet, Handler: c.files},
		{Pattern: "/api/folders", Method: http.MethodPost, Handler: c.limiter.Limit(c.create)},
		{Pattern: "/api/create-folder", Method: http.MethodPost, Handler: c.limiter.Limit(c.create)},
		{Pattern: "/api/folders/{folderName}", Method: http.MethodDelete, Handler: c.limiter.Limit(c.delete)},
	}
}

func (c *FolderController) list(w http.ResponseWriter, r *http.Request) {
	folders, err := c.service.ListFolders(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, api.OK(folders, fmt.Sprintf("Se encontraron %d carpetas", len(folders))))
}

func (c *FolderController) files(w http.ResponseWriter, r *http.Request) {
	folderName := r.PathValue("folderName")
	files, err := c.service.ListFiles(r.Context(), folderName)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, api.OK(files,
		fmt.Sprintf("Se encontraron %d archivos en la carpeta %s", len(files), folderName)))
}

type createFolderRequest struct {
	Name string `json:"name"`
}

func (c *FolderController) create(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r, c.policy); err != nil {
		fail(w, r, err)
		return
	}

	var req createFolderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err)
		return
	}

	folder, err := c.service.CreateFolder(r.Context(), req.Name)
	if err != nil {
		fail(w, r, err)
		return
	}

	_, email := authIdentity(r)
	logger.Info("Folder created", zap.String("folder", folder.Name), zap.String("by", email))
	api.WriteJSON(w, http.StatusOK, api.OK(folder, fmt.Sprintf("Carpeta '%s' creada exitosamente", folder.Name)))
}

func (c *FolderController) delete(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r, c.policy); err != nil {
		fail(w, r, err)
		return
	}

	result, err := c.service.DeleteFolder(r.Context(), r.PathValue("folderName"))
	if err != nil {
		fail(w, r, err)
		return
	}

	_, email := authIdentity(r)
	logger.Info("Folder deleted", zap.String("folder", result.Name), zap.Int("deleted", result.Deleted), zap.String("by", email))
	api.WriteJSON(w, http.StatusOK, api.Response{
		Success: true,
		Message: fmt.Sprintf("Carpeta '%s' eliminada exitosamente (%d archivos eliminados)", result.Name, result.Deleted),
	})
}
