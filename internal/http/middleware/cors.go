package middleware

import (
	"net/http"

	"github.com/arkidots/pipeline-api/internal/config"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// CORS returns a CORS middleware configured from the application config
func CORS(cfg *config.CORSConfig, environment string, logger *zap.Logger) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}

	wildcard := false
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			wildcard = true
			break
		}
	}

	switch {
	case wildcard:
		if environment != "development" {
			logger.Warn("CORS configured with wildcard origin outside development",
				zap.String("environment", environment))
		}
		options.AllowOriginFunc = func(r *http.Request, origin string) bool {
			return origin != ""
		}
	case len(cfg.AllowedOrigins) > 0:
		options.AllowedOrigins = cfg.AllowedOrigins
		logger.Info("CORS configured with explicit origins",
			zap.Strings("origins", cfg.AllowedOrigins))
	case environment == "development" || environment == "":
		// Nothing configured: open in development, closed everywhere else.
		options.AllowOriginFunc = func(r *http.Request, origin string) bool {
			return origin != ""
		}
		logger.Info("CORS configured to allow all origins in development mode")
	default:
		options.AllowOriginFunc = func(r *http.Request, origin string) bool {
			return false
		}
		logger.Warn("CORS configured with no allowed origins - all cross-origin requests will be denied",
			zap.String("environment", environment))
	}

	return cors.Handler(options)
}
