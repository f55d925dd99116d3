package controller

import (
	"net/http"

	"github.com/jmanurodriguez/cloudinary-portal/admin"
	"github.com/jmanurodriguez/cloudinary-portal/api"
	"github.com/jmanurodriguez/cloudinary-portal/server"
)

type AdminController struct {
	policy *admin.Policy
}

func ProvideAdminController(policy *admin.Policy) *AdminController {
	return &AdminController{policy: policy}
}

func (c *AdminController) Routes() []server.Route {
	return []server.Route{
		{Pattern: "/api/check-admin", Method: http.MethodGet, Handler: c.checkAdmin},
	}
}

// checkAdminResponse does not use the data envelope; the client reads the
// flags at the top level.
type checkAdminResponse struct {
	Success         bool   `json:"success"`
	IsAdmin         bool   `json:"isAdmin"`
	Email           string `json:"email,omitempty"`
	DevelopmentMode bool   `json:"developmentMode"`
	Message         string `json:"message"`
}

// checkAdmin never echoes the allow-list. developmentMode is a UI hint only.
func (c *AdminController) checkAdmin(w http.ResponseWriter, r *http.Request) {
	userId, email := authIdentity(r)
	if userId == "" {
		api.WriteJSON(w, http.StatusOK, checkAdminResponse{
			DevelopmentMode: c.policy.IsDevelopmentMode(),
			Message:         "No autenticado",
		})
		return
	}

	isAdmin := c.policy.IsAdmin(email)
	message := "Usuario no es administrador"
	if isAdmin {
		message = "Usuario es administrador"
	}
	api.WriteJSON(w, http.StatusOK, checkAdminResponse{
		Success:         true,
		IsAdmin:         isAdmin,
		Email:           email,
		DevelopmentMode: c.policy.IsDevelopmentMode(),
		Message:         message,
	})
}
