package httpCors

import (
	"github.com/rs/cors"

	"talesoul-backend/config"
)

// CorsSettings builds the CORS policy for the API. The frontend origin is
// configurable; everything else stays locked to the headers the client
// actually sends.
func CorsSettings() *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:   []string{config.Getenv("FRONTEND_ORIGIN", "*")},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
	})
}
