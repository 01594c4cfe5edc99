package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/lefilcompany/creator-leap-studio-sub000/internal/http/handlers"
	"github.com/lefilcompany/creator-leap-studio-sub000/internal/infra"
	"github.com/lefilcompany/creator-leap-studio-sub000/internal/middleware"
)

// Options carries the cross-cutting pieces the router wires around handlers.
type Options struct {
	App           *handlers.App
	Logger        infra.Logger
	JWTSecret     string
	CORSOrigins   []string
	DefaultLocale string
	CountryLookup middleware.CountryLookup
	RateLimit     int
	StaticDir     string
}

// NewRouter builds the HTTP surface: public health and static asset routes,
// JWT-protected video and credit routes.
func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.CORSOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	r.Get("/v1/healthz", opts.App.Health)

	if opts.StaticDir != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir)))
		r.Get("/static/*", fs.ServeHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthJWT(opts.JWTSecret))
		if opts.RateLimit > 0 {
			r.Use(middleware.RateLimit(opts.RateLimit, time.Minute))
		}

		r.Route("/v1/videos", func(r chi.Router) {
			r.Post("/generations", opts.App.VideosGenerate)
			r.Get("/generations/{job_id}", opts.App.VideoStatus)
		})
		r.Get("/v1/credits/balance", opts.App.CreditBalance)
	})

	return r
}
