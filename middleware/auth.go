package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"fulltechlicense/logger"
	"fulltechlicense/models"
	"fulltechlicense/utils"
)

type contextKey string

const (
	ctxKeyRequestID contextKey = "request_id"
	ctxKeyAdminID   contextKey = "admin_id"
	ctxKeyEmail     contextKey = "email"
	ctxKeyRole      contextKey = "role"
)

// secreto del token de acceso, fijado una vez en el arranque
var accessTokenSecret string

// SetAccessTokenSecret configura el secreto con el que AuthMiddleware
// verifica los tokens del backoffice.
func SetAccessTokenSecret(secret string) {
	accessTokenSecret = secret
}

// RequestID devuelve el id de correlación de la petición, si existe.
func RequestID(r *http.Request) string {
	id, _ := r.Context().Value(ctxKeyRequestID).(string)
	return id
}

// AdminID devuelve el id del operador autenticado.
func AdminID(r *http.Request) string {
	id, _ := r.Context().Value(ctxKeyAdminID).(string)
	return id
}

// AdminRole devuelve el rol del operador autenticado.
func AdminRole(r *http.Request) string {
	role, _ := r.Context().Value(ctxKeyRole).(string)
	return role
}

func writeUnauthorized(w http.ResponseWriter, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(models.ErrorResponse(message, err))
}

// AuthMiddleware verifica el Bearer token del backoffice y deja la
// identidad del operador en el contexto
func AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := RequestID(r)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			logger.WithFields(map[string]interface{}{
				"request_id": requestID,
				"ip":         GetClientIP(r),
			}).Warn("Missing authorization header")
			writeUnauthorized(w, "Authorization header required", nil)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			logger.WithFields(map[string]interface{}{
				"request_id": requestID,
				"ip":         GetClientIP(r),
			}).Warn("Invalid authorization header format")
			writeUnauthorized(w, "Invalid authorization header format", nil)
			return
		}

		claims, err := utils.VerifyAccessToken(accessTokenSecret, parts[1])
		if err != nil {
			logger.WithFields(map[string]interface{}{
				"request_id": requestID,
				"ip":         GetClientIP(r),
				"error":      err.Error(),
			}).Warn("Invalid or expired token")
			writeUnauthorized(w, "Invalid or expired token", err)
			return
		}

		logger.WithFields(map[string]interface{}{
			"request_id": requestID,
			"admin_id":   claims.Subject,
			"email":      claims.Email,
		}).Debug("Admin authenticated")

		ctx := context.WithValue(r.Context(), ctxKeyAdminID, claims.Subject)
		ctx = context.WithValue(ctx, ctxKeyEmail, claims.Email)
		ctx = context.WithValue(ctx, ctxKeyRole, claims.Role)

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}
