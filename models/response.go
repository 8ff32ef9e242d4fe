package models

// APIResponse envuelve todas las respuestas JSON del servidor.
type APIResponse struct {
	Status  string      `json:"status"` // success, error
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message"`
	Detail  string      `json:"detail,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// SuccessResponse construye una respuesta de éxito.
func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	}
}

// ErrorResponse construye una respuesta de error simple.
func ErrorResponse(message string, err error) APIResponse {
	resp := APIResponse{
		Status:  "error",
		Message: message,
	}
	if err != nil {
		resp.Detail = err.Error()
	}
	return resp
}

// TaxonomyResponse construye una respuesta de error con código de taxonomía
// (INVALID_KEY, DEVICE_LIMIT, ...). Los clientes distinguen fallos
// terminales de errores reintentables por este código.
func TaxonomyResponse(code, message, detail string) APIResponse {
	return APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		Detail:  detail,
	}
}
