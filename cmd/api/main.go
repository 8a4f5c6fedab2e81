package main

import (
	"net/http"
	"os"
	"time"

	"pet-adoption-admin/internal/adapters/authapi"
	fileStore "pet-adoption-admin/internal/adapters/sessionstore/file"
	memStore "pet-adoption-admin/internal/adapters/sessionstore/memory"
	"pet-adoption-admin/internal/config"
	"pet-adoption-admin/internal/notify"
	"pet-adoption-admin/internal/platform/logger"
	"pet-adoption-admin/internal/router"
	"pet-adoption-admin/internal/session"
)

// @title        Pet Adoption Admin BFF
// @version      1.0
// @description  Admin dashboard backend for the pet adoption request lifecycle.
// @BasePath     /
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		App:    cfg.AppName,
	})

	// Sesión: file store si hay path (sobrevive reinicios), memoria si no.
	var store session.Store
	if cfg.SessionFile != "" {
		fs, err := fileStore.NewStore(cfg.SessionFile)
		if err != nil {
			log.Error("session file store unavailable, falling back to memory", map[string]any{
				"path":  cfg.SessionFile,
				"error": err.Error(),
			})
			store = memStore.NewStore()
		} else {
			store = fs
		}
	} else {
		store = memStore.NewStore()
	}

	// Sin backend configurado arrancamos en modo dev: sin sesión,
	// /admin abierto y sin Authorization saliente.
	var sess *session.Manager
	if cfg.AdoptionAPIBaseURL != "" {
		refresher := authapi.NewClient(authapi.Config{
			BaseURL: cfg.AuthAPIBaseURL,
			Timeout: cfg.HTTPTimeout,
		})

		sess, err = session.NewManager(store, refresher)
		if err != nil {
			log.Error("session manager init failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
	} else {
		log.Warn("ADOPTION_API_BASE_URL not set, running in dev mode", nil)
	}

	events := notify.NewBus()
	if sess != nil {
		// Expiración de sesión => broadcast para que la UI redirija a login.
		sess.OnExpired(func() {
			events.Publish(notify.Event{
				Name: notify.EventSessionExpired,
				At:   time.Now(),
			})
		})
	}
	events.Subscribe(notify.EventSessionExpired, func(e notify.Event) {
		log.Warn("session expired, sign in required", map[string]any{"at": e.At})
	})

	r := router.NewRouter(router.Options{
		Session:        sess,
		BackendBaseURL: cfg.AdoptionAPIBaseURL,
		HTTPTimeout:    cfg.HTTPTimeout,
		Events:         events,
		Log:            log,
	})

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": cfg.Addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
