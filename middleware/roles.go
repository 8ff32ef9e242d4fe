package middleware

import (
	"encoding/json"
	"net/http"

	"fulltechlicense/database"
	"fulltechlicense/models"
)

// RequireRoles envuelve un handler y solo deja pasar si el rol del operador
// está en allowedRoles.
func RequireRoles(allowedRoles ...string) func(http.HandlerFunc) http.HandlerFunc {
	set := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		set[r] = struct{}{}
	}
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			// Relee el rol de la base para no confiar en claims viejos
			adminID := AdminID(r)
			if adminID == "" {
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(models.ErrorResponse("Unauthorized", nil))
				return
			}
			var role string
			if err := database.DB.QueryRow("SELECT role FROM admins WHERE id = ?", adminID).Scan(&role); err != nil {
				w.WriteHeader(http.StatusForbidden)
				_ = json.NewEncoder(w).Encode(models.ErrorResponse("Forbidden: insufficient role", err))
				return
			}
			if _, ok := set[role]; !ok {
				w.WriteHeader(http.StatusForbidden)
				_ = json.NewEncoder(w).Encode(models.ErrorResponse("Forbidden: insufficient role", nil))
				return
			}
			next.ServeHTTP(w, r)
		}
	}
}
