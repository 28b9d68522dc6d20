package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"service-dispatch/internal/domain"
)

// Producer publishes order lifecycle notifications to the notify topic. It
// satisfies the notifier contracts of the dispatch and vendorstatus services.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	now      func() time.Time
}

// NewProducer creates a new notification Producer. Missing broker settings
// yield a nil Producer whose methods are no-ops.
func NewProducer(brokers []string, topic string) (*Producer, error) {
	if len(brokers) == 0 || strings.TrimSpace(topic) == "" {
		return nil, nil
	}

	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return &Producer{
		producer: producer,
		topic:    topic,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

type notificationDTO struct {
	Kind       string    `json:"kind"`
	OrderID    int64     `json:"order_id"`
	Status     string    `json:"status"`
	DriverID   *int64    `json:"driver_id,omitempty"`
	VendorID   int64     `json:"vendor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// StatusChanged publishes a status-changed notification.
func (p *Producer) StatusChanged(_ context.Context, o *domain.Order) error {
	return p.publish("status_changed", o)
}

// Dispatched publishes a dispatched notification.
func (p *Producer) Dispatched(_ context.Context, o *domain.Order) error {
	return p.publish("dispatched", o)
}

// Completed publishes a completed notification.
func (p *Producer) Completed(_ context.Context, o *domain.Order) error {
	return p.publish("completed", o)
}

// Cancelled publishes a cancelled notification.
func (p *Producer) Cancelled(_ context.Context, o *domain.Order) error {
	return p.publish("cancelled", o)
}

func (p *Producer) publish(kind string, o *domain.Order) error {
	if p == nil || o == nil {
		return nil
	}

	payload, err := json.Marshal(notificationDTO{
		Kind:       kind,
		OrderID:    o.ID,
		Status:     string(o.Status),
		DriverID:   o.DriverID,
		VendorID:   o.VendorID,
		OccurredAt: p.now(),
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	// Key by order so consumers see each order's notifications in order.
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(o.ID, 10)),
		Value: sarama.ByteEncoder(payload),
	}
	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("publish %s notification: %w", kind, err)
	}
	return nil
}

// Close closes the underlying producer.
func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.producer.Close()
}
