package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"service-dispatch/internal/http/handlers"
	"service-dispatch/internal/http/middleware"
)

// New constructs a chi-based http.Handler with base middleware and routes.
// The rateLimit middleware may be nil.
func New(
	base *handlers.Handlers,
	dispatch *handlers.DispatchHandler,
	avail *handlers.AvailabilityHandler,
	vendor *handlers.VendorHandler,
	rateLimit func(http.Handler) http.Handler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Observability(base.Logger))
	r.Use(chimw.Recoverer)
	if rateLimit != nil {
		r.Use(rateLimit)
	}
	r.Use(chimw.Timeout(5 * time.Second))

	r.Get("/ping", base.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(base.HealthcheckHead))
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/available-orders", avail.List)

	r.Route("/orders", func(r chi.Router) {
		r.Get("/active", dispatch.Active)
		r.Get("/history", dispatch.History)

		r.Route("/{id}", func(r chi.Router) {
			r.Post("/accept", dispatch.Accept)
			r.Post("/reject", dispatch.Reject)
			r.Post("/pickup", dispatch.PickUp)
			r.Post("/start-delivery", dispatch.StartDelivery)
			r.Post("/deliver", dispatch.Deliver)
			r.Post("/vendor-status", vendor.ChangeStatus)
		})
	})

	r.NotFound(http.HandlerFunc(base.NotFound))

	return r
}
