// Package controller exposes the folder, file, upload and admin endpoints
// over HTTP. Every response uses the api envelope.
package controller

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jmanurodriguez/cloudinary-portal/admin"
	"github.com/jmanurodriguez/cloudinary-portal/api"
	"github.com/jmanurodriguez/cloudinary-portal/auth"
	"github.com/jmanurodriguez/cloudinary-portal/logger"
	"github.com/jmanurodriguez/cloudinary-portal/server"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// requireAdmin is the gate in front of every mutating endpoint: an
// authenticated caller first, then one on the allow-list.
func requireAdmin(r *http.Request, policy *admin.Policy) error {
	userId, email := authIdentity(r)
	if userId == "" {
		return api.Unauthenticated("No autorizado", "Debes iniciar sesión")
	}
	if !policy.IsAdmin(email) {
		return api.Forbidden("No tienes permisos de administrador",
			"Solo los administradores pueden realizar esta acción")
	}
	return nil
}

func authIdentity(r *http.Request) (string, string) {
	return auth.GetUserIdAndEmail(r.Context())
}

// decodeJSON reads a JSON body of at most maxBodyBytes into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return api.Validation("Solicitud demasiado grande", "El cuerpo no puede superar 1 MiB")
		case errors.Is(err, io.EOF):
			return api.Validation("Solicitud inválida", "El cuerpo de la solicitud está vacío")
		default:
			return api.Validation("Solicitud inválida", "El cuerpo debe ser JSON válido")
		}
	}
	return nil
}

// fail logs err once and writes its envelope.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := api.AsError(err)
	fields := []zap.Field{
		zap.String("requestId", server.RequestID(r.Context())),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", apiErr.Status()),
		zap.Error(err),
	}
	if apiErr.Status() >= http.StatusInternalServerError {
		logger.Error("Request failed", fields...)
	} else {
		logger.Warn("Request rejected", fields...)
	}
	api.WriteError(w, apiErr)
}
