package controller

import (
	"net/http"

	"github.com/jmanurodriguez/cloudinary-portal/admin"
	"github.com/jmanurodriguez/cloudinary-portal/api"
	"github.com/jmanurodriguez/cloudinary-portal/gateway"
	"github.com/jmanurodriguez/cloudinary-portal/logger"
	"github.com/jmanurodriguez/cloudinary-portal/server"
	"go.uber.org/zap"
)

type FileController struct {
	service *gateway.Service
	policy  *admin.Policy
	limiter *server.RateLimiter
}

func ProvideFileController(service *gateway.Service, policy *admin.Policy, limiter *server.RateLimiter) *FileController {
	return &FileController{service: service, policy: policy, limiter: limiter}
}

// Public ids contain the folder, so the id may arrive either as
// "docs%2Freport" or as "docs/report".
func (c *FileController) Routes() []server.Route {
	return []server.Route{
		{Pattern: "/api/files/{publicId...}", Method: http.MethodDelete, Handler: c.limiter.Limit(c.delete)},
	}
}

func (c *FileController) delete(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r, c.policy); err != nil {
		fail(w, r, err)
		return
	}

	publicID := r.PathValue("publicId")
	if err := c.service.DeleteFile(r.Context(), publicID); err != nil {
		fail(w, r, err)
		return
	}

	_, email := authIdentity(r)
	logger.Info("File deleted", zap.String("publicId", publicID), zap.String("by", email))
	api.WriteJSON(w, http.StatusOK, api.Response{Success: true, Message: "Archivo eliminado exitosamente"})
}
