package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/jsamuelsen11/go-todo-service/internal/platform/config"
)

// CORS returns middleware that answers preflight requests and sets the
// Access-Control headers for the configured browser origins. With no
// allowed origins configured, cross-origin requests are refused.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", headerRequestID, headerCorrelationID},
		ExposedHeaders:   []string{"Location", headerRequestID, headerCorrelationID},
		AllowCredentials: true,
		MaxAge:           cfg.MaxAge,
	})
}
