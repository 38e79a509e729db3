package statusapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/map-of-pi/mapofpi/pkg/environment"
	"github.com/map-of-pi/mapofpi/pkg/httpserver"
	"github.com/map-of-pi/mapofpi/pkg/requestid"
)

func (a *API) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(requestid.Middleware)
	r.Use(environment.Middleware(a.env))
	r.Use(a.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", httpserver.HealthCheckHandler(a.logger, a.checks...))
	if a.metrics != nil {
		r.Method(http.MethodGet, "/metrics", a.metrics.Handler())
	}

	r.Route("/session", func(r chi.Router) {
		r.Get("/", a.getSession)
		r.Post("/login", a.login)
		r.Post("/logout", a.logout)
		r.Post("/reload", a.reload)
		if a.notifications != nil {
			r.Get("/notifications", a.listNotifications)
		}
	})

	return r
}
