package services

import (
	"errors"
	"fmt"
	"net/http"

	"fulltechlicense/models"
)

// ServiceError es un fallo terminal de protocolo: lleva el código de
// taxonomía que se devuelve al cliente y se registra en el log de intentos,
// más el título/detalle legible en el idioma del producto.
type ServiceError struct {
	HTTPStatus int
	Result     string // código de taxonomía (INVALID_KEY, DEVICE_LIMIT, ...)
	Title      string
	Detail     string
}

func (e *ServiceError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Result, e.Title, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Result, e.Title)
}

// NewServiceError construye un ServiceError.
func NewServiceError(status int, result, title, detail string) *ServiceError {
	return &ServiceError{HTTPStatus: status, Result: result, Title: title, Detail: detail}
}

// AsServiceError extrae un *ServiceError de err, si lo es.
func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// Errores compartidos entre servicios.
var (
	ErrLicenseNotFound = NewServiceError(http.StatusNotFound, models.AttemptInvalidKey, "Licencia no encontrada", "")
	ErrLicenseExpired  = NewServiceError(http.StatusForbidden, models.AttemptExpired, "Licencia expirada", "")
	ErrProductInvalid  = NewServiceError(http.StatusBadRequest, models.AttemptError, "Producto inválido", "")
	ErrServer          = NewServiceError(http.StatusInternalServerError, models.AttemptError, "Error de servidor", "")
)

// errLicenseNotActive construye el rechazo por estado no activo, con el
// estado concreto como detalle y como código de taxonomía.
func errLicenseNotActive(status string) *ServiceError {
	result := models.AttemptError
	switch status {
	case models.LicenseStatusSuspended:
		result = models.AttemptSuspended
	case models.LicenseStatusRevoked:
		result = models.AttemptRevoked
	case models.LicenseStatusExpired:
		result = models.AttemptExpired
	}
	return NewServiceError(http.StatusForbidden, result, "Licencia no activa", "Estado: "+status)
}
