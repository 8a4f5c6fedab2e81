package router

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "pet-adoption-admin/docs"
	"pet-adoption-admin/internal/adapters/adoptionapi"
	"pet-adoption-admin/internal/domain/adoptions"
	"pet-adoption-admin/internal/middleware"
	"pet-adoption-admin/internal/notify"
	"pet-adoption-admin/internal/platform/httpclient"
	"pet-adoption-admin/internal/platform/logger"
	"pet-adoption-admin/internal/session"
)

type Options struct {
	// Session maneja tokens y refresh. Puede ser nil (modo dev: sin
	// Authorization saliente y sin exigir sesión en /admin).
	Session *session.Manager

	// BackendBaseURL del servicio de adopciones. Si viene vacío se
	// intenta ADOPTION_API_BASE_URL (para dev/handoff).
	BackendBaseURL string

	// HTTPTimeout por request saliente. 0 => default del wrapper.
	HTTPTimeout time.Duration

	// Opcional: puerto API ya construido (para tests). Si viene, se
	// ignoran BackendBaseURL y HTTPTimeout.
	API adoptions.API

	// Opcional: bus de eventos compartido con el resto del proceso.
	Events *notify.Bus

	Log logger.Logger
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.SessionContext(opts.Session))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}

	api := opts.API
	if api == nil {
		baseURL := opts.BackendBaseURL
		if baseURL == "" {
			baseURL = os.Getenv("ADOPTION_API_BASE_URL")
		}

		hcOpts := httpclient.Options{
			BaseURL: baseURL,
			Timeout: opts.HTTPTimeout,
			Logger:  log,
		}
		if opts.Session != nil {
			hcOpts.Tokens = opts.Session
		}

		hc, err := httpclient.New(hcOpts)
		if err != nil {
			// BaseURL inválida es error de configuración: mejor un server
			// que responde 502 en /admin que un proceso que no arranca.
			log.Error("invalid backend base url, admin routes will fail", map[string]any{
				"base_url": baseURL,
				"error":    err.Error(),
			})
			hc, _ = httpclient.New(httpclient.Options{Logger: log})
		}

		api = adoptionapi.NewClient(hc)
	}

	svc := adoptions.NewService(api, opts.Events)

	// Todo /admin exige sesión activa (salvo modo dev sin manager).
	r.Group(func(gr chi.Router) {
		gr.Use(middleware.RequireSession(opts.Session))
		adoptions.RegisterRoutes(gr, svc)
	})

	return r
}
