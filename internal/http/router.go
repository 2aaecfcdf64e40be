package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/kinship/internal/http/campaign"
	"github.com/MrJamesThe3rd/kinship/internal/http/donation"
)

type Options struct {
	AllowedOrigins []string
	// Admin guards the admin routes; they are not mounted when it is nil.
	Admin func(http.Handler) http.Handler
}

func New(
	donationsV1 *donation.Handler,
	campaignsV1 *campaign.Handler,
	opts Options,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	admin := func(routes func(chi.Router)) func(chi.Router) {
		return func(r chi.Router) {
			if opts.Admin == nil {
				return
			}

			r.Use(opts.Admin)
			routes(r)
		}
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/donations", func(r chi.Router) {
			donationsV1.Routes(r)
			r.Group(admin(donationsV1.AdminRoutes))
		})

		r.Route("/campaigns", func(r chi.Router) {
			campaignsV1.Routes(r)
			r.Group(admin(campaignsV1.AdminRoutes))
		})

		r.Group(admin(func(r chi.Router) {
			r.Get("/stats", donationsV1.Stats)
		}))
	})

	return router
}
