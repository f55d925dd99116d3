package gateway

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jmanurodriguez/cloudinary-portal/api"
)

type statusError interface {
	HTTPStatus() int
}

// errorTitles are the user facing messages for one operation.
type errorTitles struct {
	failure        string
	notFound       string
	notFoundDetail string
	conflict       string
	conflictDetail string
}

var (
	createFolderTitles = errorTitles{
		failure:        "Error al crear la carpeta",
		notFound:       "Carpeta no encontrada",
		notFoundDetail: "La carpeta especificada no existe",
		conflict:       "La carpeta ya existe",
		conflictDetail: "Ya existe una carpeta con ese nombre",
	}
	deleteFolderTitles = errorTitles{
		failure:        "Error al eliminar la carpeta",
		notFound:       "Carpeta no encontrada",
		notFoundDetail: "La carpeta especificada no existe",
		conflict:       "No se pudo eliminar la carpeta",
		conflictDetail: "La carpeta todavía contiene archivos",
	}
	deleteFileTitles = errorTitles{
		failure:        "Error al eliminar el archivo",
		notFound:       "Archivo no encontrado",
		notFoundDetail: "El archivo especificado no existe",
		conflict:       "No se pudo eliminar el archivo",
		conflictDetail: "El archivo está en uso",
	}
)

// mapProviderError reduces a provider failure to the api taxonomy using the
// operation's titles.
func mapProviderError(err error, titles errorTitles) error {
	if err == nil {
		return nil
	}

	status := 0
	var se statusError
	if errors.As(err, &se) {
		status = se.HTTPStatus()
	}

	switch {
	case status == http.StatusNotFound:
		e := api.NotFound(titles.notFound, titles.notFoundDetail)
		e.Err = err
		return e
	case status == http.StatusConflict || strings.Contains(strings.ToLower(err.Error()), "already exists"):
		e := api.Conflict(titles.conflict, titles.conflictDetail)
		e.Err = err
		return e
	default:
		return api.Provider(titles.failure, err)
	}
}
