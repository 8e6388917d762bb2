package auth

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"ms-notifications/internal/config"
)

// ExtractTokenFromRequest pulls the bearer credential from the Authorization header
func ExtractTokenFromRequest(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header missing")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("authorization header is not a bearer token")
	}

	return parts[1], nil
}

// CronAuthMiddleware guards the scan trigger endpoint. The caller must
// present the shared cron secret as a bearer credential, except in
// local-development mode where the check is skipped entirely.
func CronAuthMiddleware(cfg config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.IsDevelopment() {
				next.ServeHTTP(w, r)
				return
			}

			token, err := ExtractTokenFromRequest(r)
			if err != nil || cfg.CronSecret == "" ||
				subtle.ConstantTimeCompare([]byte(token), []byte(cfg.CronSecret)) != 1 {
				log.Println("Unauthorized cron attempt")
				writeUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// APIKeyMiddleware guards the direct dispatch endpoint with a static API key header
func APIKeyMiddleware(cfg config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get("x-api-key")
			if cfg.NotificationAPIKey == "" ||
				subtle.ConstantTimeCompare([]byte(apiKey), []byte(cfg.NotificationAPIKey)) != 1 {
				log.Println("Unauthorized notification API attempt")
				writeUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AdminMiddleware guards the admin log inspection endpoints. The caller must
// present a JWT signed with the admin secret carrying an admin role claim.
func AdminMiddleware(cfg config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := ExtractTokenFromRequest(r)
			if err != nil {
				log.Printf("Error extracting token: %v", err)
				writeUnauthorized(w)
				return
			}

			isAdmin, err := HasAdminRole(token, cfg.AdminJWTSecret)
			if err != nil {
				log.Printf("Error validating admin token: %v", err)
				writeUnauthorized(w)
				return
			}

			if !isAdmin {
				http.Error(w, "Forbidden - Admin access required", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"}); err != nil {
		log.Printf("Error encoding unauthorized response: %v", err)
	}
}
