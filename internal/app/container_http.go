package app

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/dig"

	"service-dispatch/internal/config"
	"service-dispatch/internal/http/handlers"
	"service-dispatch/internal/http/middleware/ratelimit"
	"service-dispatch/internal/http/pprofserver"
	"service-dispatch/internal/http/router"
)

func registerHTTP(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	routerProvider := func(
		base *handlers.Handlers,
		dispatchHandler *handlers.DispatchHandler,
		availabilityHandler *handlers.AvailabilityHandler,
		vendorHandler *handlers.VendorHandler,
		mw *ratelimit.Middleware,
	) http.Handler {
		return router.New(base, dispatchHandler, availabilityHandler, vendorHandler, mw.Handler())
	}
	return provideAll(container,
		newRateLimitClock,
		newRateLimiter,
		newRateLimitMiddleware,
		handlers.New,
		handlers.NewDispatchUsecase,
		handlers.NewDispatchHandler,
		handlers.NewAvailabilityUsecase,
		handlers.NewAvailabilityHandler,
		handlers.NewVendorUsecase,
		handlers.NewVendorHandler,
		routerProvider,
		serverProvider,
		newPprofServer,
	)
}

type pprofOut struct {
	dig.Out

	Server *http.Server `name:"pprof_server"`
}

// newPprofServer returns a nil server when no pprof address is configured.
func newPprofServer(cfg *config.Config) pprofOut {
	if cfg.Pprof.Addr == "" {
		return pprofOut{}
	}
	return pprofOut{
		Server: &http.Server{
			Addr: cfg.Pprof.Addr,
			Handler: pprofserver.Handler(pprofserver.Config{
				User: cfg.Pprof.User,
				Pass: cfg.Pprof.Pass,
			}),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}
