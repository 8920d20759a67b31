package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/orderform-backend/api/controllers"
	ordercontrollers "github.com/angelmondragon/orderform-backend/api/controllers/orders"
	"github.com/angelmondragon/orderform-backend/api/middleware"
	"github.com/angelmondragon/orderform-backend/internal/orders"
	"github.com/angelmondragon/orderform-backend/pkg/config"
	"github.com/angelmondragon/orderform-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	pingers map[string]controllers.Pinger,
	ordersSvc orders.Service,
	themeSvc controllers.ThemeService,
	requestObserver middleware.RequestObserver,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	secureCookies := !cfg.App.IsDev()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, requestObserver),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, pingers))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	device := middleware.Device(cfg.Session.DeviceCookie, secureCookies, logg)
	r.With(device).Get("/", controllers.Index(themeSvc, secureCookies, logg))

	r.Route("/api/v1", func(r chi.Router) {
		// Theme preferences follow the browser, not the signed-in principal.
		r.Group(func(r chi.Router) {
			r.Use(device)
			r.Get("/theme", controllers.ThemeGet(themeSvc, secureCookies, logg))
			r.Put("/theme", controllers.ThemeSet(themeSvc, secureCookies, logg))
			r.Post("/theme/toggle", controllers.ThemeToggle(themeSvc, secureCookies, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Get("/ping", controllers.PrivatePing())

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", ordercontrollers.Create(ordersSvc, logg))
				r.Get("/", ordercontrollers.List(ordersSvc, logg))
				r.Get("/by-sln/{sln}", ordercontrollers.GetBySLN(ordersSvc, logg))
				r.Get("/{orderId}", ordercontrollers.Detail(ordersSvc, logg))
				r.Put("/{orderId}", ordercontrollers.UpdateFull(ordersSvc, logg))
				r.Patch("/{orderId}/status", ordercontrollers.UpdateStatus(ordersSvc, logg))
			})

			r.Get("/session/orders", controllers.SessionOrders(ordersSvc, logg))
			r.Delete("/session/orders", controllers.SessionClear(ordersSvc, logg))
			r.Post("/auth/logout", controllers.AuthLogout(ordersSvc, logg))
		})
	})

	return r
}
