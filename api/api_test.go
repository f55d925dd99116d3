package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:      http.StatusBadRequest,
		KindUnauthenticated: http.StatusUnauthorized,
		KindForbidden:       http.StatusForbidden,
		KindNotFound:        http.StatusNotFound,
		KindConflict:        http.StatusConflict,
		KindTooManyRequests: http.StatusTooManyRequests,
		KindProvider:        http.StatusInternalServerError,
		KindInternal:        http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.Status(), "kind %d", kind)
	}
}

func TestProviderError_PassesMessageThrough(t *testing.T) {
	cause := errors.New("Rate Limit Exceeded")
	err := Provider("Error al crear la carpeta", cause)

	assert.Equal(t, "Rate Limit Exceeded", err.Detail)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusInternalServerError, err.Status())
}

func TestAsError_WrapsForeignErrors(t *testing.T) {
	wrapped := fmt.Errorf("ctx: %w", Conflict("La carpeta ya existe", ""))
	assert.Equal(t, KindConflict, AsError(wrapped).Kind)
	assert.True(t, IsKind(wrapped, KindConflict))

	plain := errors.New("boom")
	got := AsError(plain)
	assert.Equal(t, KindInternal, got.Kind)
	assert.ErrorIs(t, got, plain)
}

func TestWriteError_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, Validation("Nombre de carpeta inválido", "solo letras"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Nombre de carpeta inválido", body["error"])
	assert.Equal(t, "solo letras", body["message"])
	assert.NotContains(t, body, "data")
}

func TestWriteJSON_KeepsEmptySlices(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusOK, OK([]string{}, "Se encontraron 0 carpetas"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []any{}, body["data"])
}
