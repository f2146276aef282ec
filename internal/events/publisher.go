package events

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"makerspace/pkg/config"
	"makerspace/pkg/metrics"
)

const (
	DriverLog   = "log"
	DriverAMQP  = "amqp"
	DriverRedis = "redis"
)

// NewPublisher builds the publisher selected by cfg.Driver.
func NewPublisher(ctx context.Context, cfg config.EventsConfig, log logrus.FieldLogger) (Publisher, error) {
	switch cfg.Driver {
	case "", DriverLog:
		return NewLogPublisher(log), nil
	case DriverAMQP:
		return NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	case DriverRedis:
		return NewStreamPublisher(ctx, cfg.RedisURL, cfg.RedisStream)
	default:
		return nil, fmt.Errorf("unknown events driver %q", cfg.Driver)
	}
}

// Emitter is what services hold: it publishes and never fails the caller.
// Publish errors are logged and counted.
type Emitter struct {
	pub     Publisher
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

func NewEmitter(pub Publisher, log logrus.FieldLogger, m *metrics.Metrics) *Emitter {
	return &Emitter{pub: pub, log: log, metrics: m}
}

func (e *Emitter) Emit(ctx context.Context, topic Topic, actor string, data any) {
	if e == nil || e.pub == nil {
		return
	}
	ev := New(topic, actor, data)
	if err := e.pub.Publish(ctx, ev); err != nil {
		e.log.WithError(err).WithField("topic", topic).Warn("publish event failed")
		if e.metrics != nil {
			e.metrics.EventPublishErrors.Inc()
		}
		return
	}
	if e.metrics != nil {
		e.metrics.EventsPublished.WithLabelValues(string(topic)).Inc()
	}
}
