package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"pet-adoption-admin/internal/platform/logger"
)

// Config del proceso BFF. Todo viene por env (con .env opcional en dev).
type Config struct {
	// Addr del server local, ej ":8080".
	Addr string

	// AdoptionAPIBaseURL apunta al backend de adopciones.
	// Vacío => modo dev sin backend (los handlers fallan con network error).
	AdoptionAPIBaseURL string

	// AuthAPIBaseURL apunta al servicio de auth (refresh de tokens).
	// Por defecto usa el mismo host que el backend de adopciones.
	AuthAPIBaseURL string

	// HTTPTimeout por request saliente (incluye todos los reintentos de lectura).
	HTTPTimeout time.Duration

	// SessionFile persiste los tokens de sesión entre reinicios.
	// Vacío => sesión solo en memoria.
	SessionFile string

	LogLevel  logger.Level
	LogFormat logger.Format
	AppName   string
}

// Load lee .env si existe y después el environment.
// El environment siempre gana sobre .env (godotenv no pisa vars seteadas).
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr:               ":8080",
		AdoptionAPIBaseURL: strings.TrimSpace(os.Getenv("ADOPTION_API_BASE_URL")),
		AuthAPIBaseURL:     strings.TrimSpace(os.Getenv("AUTH_API_BASE_URL")),
		HTTPTimeout:        30 * time.Second,
		SessionFile:        strings.TrimSpace(os.Getenv("SESSION_FILE")),
		LogLevel:           logger.ParseLevel(os.Getenv("LOG_LEVEL")),
		LogFormat:          logger.ParseFormat(os.Getenv("LOG_FORMAT")),
		AppName:            strings.TrimSpace(os.Getenv("APP_NAME")),
	}

	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		cfg.Addr = ":" + v
	}

	if v := strings.TrimSpace(os.Getenv("HTTP_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid HTTP_TIMEOUT %q: %w", v, err)
		}
		cfg.HTTPTimeout = d
	}

	if cfg.AuthAPIBaseURL == "" {
		cfg.AuthAPIBaseURL = cfg.AdoptionAPIBaseURL
	}

	if cfg.AppName == "" {
		cfg.AppName = "pet-adoption-admin"
	}

	return cfg, nil
}
