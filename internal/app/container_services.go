package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"service-dispatch/internal/config"
	"service-dispatch/internal/logx"
	"service-dispatch/internal/repository"
	"service-dispatch/internal/service/availability"
	"service-dispatch/internal/service/dispatch"
	"service-dispatch/internal/service/earnings"
	"service-dispatch/internal/service/vendorstatus"
	"service-dispatch/internal/transport/kafka"
)

func registerDomainServices(container *dig.Container) error {
	return provideAll(container,
		repository.NewOrderRepo,
		repository.NewSettingsRepo,
		newEarningsRecorder,
		newDispatchService,
		newAvailabilityService,
		newVendorStatusService,
	)
}

type earningsIn struct {
	dig.In

	Settings *repository.SettingsRepo
	Logger   logx.Logger
	Recorded prometheus.Counter `name:"driver_earnings_recorded_total"`
}

func newEarningsRecorder(in earningsIn) *earnings.Recorder {
	return earnings.NewRecorder(in.Settings, in.Recorded, in.Logger)
}

type dispatchIn struct {
	dig.In

	Cfg       *config.Config
	Repo      *repository.OrderRepo
	Locations locationGateway
	Producer  *kafka.Producer
	Earnings  *earnings.Recorder
	Logger    logx.Logger
	Geofence  prometheus.Counter `name:"geofence_violations_total"`
}

func newDispatchService(in dispatchIn) *dispatch.Service {
	return dispatch.NewService(
		in.Repo,
		in.Locations,
		in.Producer,
		in.Earnings,
		in.Geofence,
		in.Cfg.Dispatch.GeofenceRadiusKm,
		in.Cfg.Dispatch.OperationTimeout,
		in.Logger,
	)
}

func newAvailabilityService(
	cfg *config.Config,
	orders *repository.OrderRepo,
	settings *repository.SettingsRepo,
	logger logx.Logger,
) *availability.Service {
	return availability.NewService(orders, settings, cfg.Dispatch.DiscoveryRadiusKm, cfg.Dispatch.OperationTimeout, logger)
}

func newVendorStatusService(
	cfg *config.Config,
	repo *repository.OrderRepo,
	producer *kafka.Producer,
	logger logx.Logger,
) *vendorstatus.Service {
	return vendorstatus.NewService(repo, producer, cfg.Dispatch.OperationTimeout, logger)
}
