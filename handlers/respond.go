package handlers

import (
	"encoding/json"
	"net/http"

	"fulltechlicense/logger"
	"fulltechlicense/middleware"
	"fulltechlicense/models"
	"fulltechlicense/services"
)

func writeJSON(w http.ResponseWriter, status int, resp models.APIResponse) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// writeServiceError traduce un error de servicio a la respuesta HTTP. Los
// ServiceError llevan su taxonomía; cualquier otro error se colapsa en la
// respuesta genérica de servidor sin filtrar detalle interno.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if se, ok := services.AsServiceError(err); ok {
		writeJSON(w, se.HTTPStatus, models.TaxonomyResponse(se.Result, se.Title, se.Detail))
		return
	}

	logger.WithFields(map[string]interface{}{
		"request_id": middleware.RequestID(r),
		"path":       r.URL.Path,
		"error":      err.Error(),
	}).Error("Unhandled service error")
	writeJSON(w, http.StatusInternalServerError, models.TaxonomyResponse(models.AttemptError, "Error de servidor", ""))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse("Invalid request body", err))
		return false
	}
	return true
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, models.ErrorResponse("Method not allowed", nil))
}
