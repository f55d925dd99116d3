package controller

import (
	"net/http"

	"github.com/jmanurodriguez/cloudinary-portal/api"
	"github.com/jmanurodriguez/cloudinary-portal/config"
	"github.com/jmanurodriguez/cloudinary-portal/server"
	"github.com/jmanurodriguez/cloudinary-portal/upload"
)

type UploadController struct {
	issuer      *upload.Issuer
	limiter     *server.RateLimiter
	requireAuth bool
}

func ProvideUploadController(issuer *upload.Issuer, limiter *server.RateLimiter, cfg *config.AppConfig) *UploadController {
	return &UploadController{issuer: issuer, limiter: limiter, requireAuth: cfg.RequireAuthForUpload}
}

func (c *UploadController) Routes() []server.Route {
	return []server.Route{
		{Pattern: "/api/sign-upload", Method: http.MethodPost, Handler: c.limiter.Limit(c.sign)},
	}
}

type signUploadRequest struct {
	Folder       string `json:"folder"`
	ResourceType string `json:"resource_type"`
}

func (c *UploadController) sign(w http.ResponseWriter, r *http.Request) {
	if c.requireAuth {
		if userId, _ := authIdentity(r); userId == "" {
			fail(w, r, api.Unauthenticated("No autorizado", "Debes iniciar sesión"))
			return
		}
	}

	var req signUploadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err)
		return
	}

	sig, err := c.issuer.Issue(req.Folder, req.ResourceType)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, api.OK(sig, "Firma generada exitosamente"))
}
