package middleware

import (
	"net/http"

	"campus-backend/internal/config"

	"github.com/rs/cors"
)

// preflight responses may be cached by browsers this many seconds
const corsMaxAge = 300

// NewCORS builds the CORS layer from the configured origins, methods and
// headers. Credentials are allowed because the frontend sends the bearer
// token on every call.
func NewCORS(cfg *config.Config) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CorsAllowedOrigins,
		AllowedMethods:   cfg.Server.CorsAllowedMethods,
		AllowedHeaders:   cfg.Server.CorsAllowedHeaders,
		AllowCredentials: true,
		MaxAge:           corsMaxAge,
	}).Handler
}
