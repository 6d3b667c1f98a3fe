package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skybooklabs/skybook-backend/api/controllers"
	ordercontrollers "github.com/skybooklabs/skybook-backend/api/controllers/orders"
	"github.com/skybooklabs/skybook-backend/api/middleware"
	"github.com/skybooklabs/skybook-backend/internal/orders"
	"github.com/skybooklabs/skybook-backend/internal/workflow"
	"github.com/skybooklabs/skybook-backend/pkg/config"
	"github.com/skybooklabs/skybook-backend/pkg/logger"
	pkgredis "github.com/skybooklabs/skybook-backend/pkg/redis"
)

// RouterParams carries the dependencies for NewRouter. Redis is optional;
// without it the idempotency middleware is skipped.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    *pkgredis.Client
	Orders   orders.Service
	Workflow workflow.Service
	Registry *prometheus.Registry
}

// NewRouter assembles the HTTP surface: order operations, the workflow read
// endpoint, health probes and metrics.
func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	deps := map[string]controllers.Pinger{}
	if params.DB != nil {
		deps["postgres"] = params.DB
	}
	if params.Redis != nil {
		deps["redis"] = params.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps))
	})

	if params.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.Registry, promhttp.HandlerOpts{}))
	} else {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}

	r.Group(func(r chi.Router) {
		if params.Redis != nil {
			r.Use(middleware.Idempotency(params.Redis, logg))
		}
		r.Post("/orders", ordercontrollers.Create(params.Orders, logg))
		r.Get("/orders/{orderId}", ordercontrollers.Detail(params.Orders, logg))
		r.Get("/orders/{orderId}/workflow", ordercontrollers.Workflow(params.Workflow, logg))
		r.Post("/orders/{orderId}/refund", ordercontrollers.Refund(params.Orders, logg))
	})

	return r
}
