package app

import (
	"go.uber.org/dig"

	"service-dispatch/internal/config"
	"service-dispatch/internal/logx"
	"service-dispatch/internal/service/payments"
	"service-dispatch/internal/service/vendorstatus"
	"service-dispatch/internal/transport/kafka"
)

func registerWorker(container *dig.Container) error {
	return provideAll(container,
		newPaymentsProcessor,
		newPaymentsConsumer,
	)
}

func newPaymentsProcessor(statuses *vendorstatus.Service) *payments.Processor {
	return payments.NewProcessor(statuses)
}

func newPaymentsConsumer(cfg *config.Config, p *payments.Processor, logger logx.Logger) (*kafka.Consumer, error) {
	return kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic, p.Handle, logger)
}
