package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"storefront/pkg/common/domain"
)

type KafkaConfig struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// KafkaDispatcher publishes domain events to one topic, keyed by event type.
type KafkaDispatcher struct {
	writer  messageWriter
	timeout time.Duration
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type envelope struct {
	Type       string       `json:"type"`
	OccurredAt time.Time    `json:"occurredAt"`
	Payload    domain.Event `json:"payload"`
}

func NewKafkaDispatcher(cfg KafkaConfig) *KafkaDispatcher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		AllowAutoTopicCreation: true,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Compression:            kafka.Gzip,
	}
	log.WithFields(log.Fields{"brokers": cfg.Brokers, "topic": cfg.Topic}).Info("kafka producer created")
	return newKafkaDispatcher(writer, cfg.WriteTimeout)
}

func newKafkaDispatcher(writer messageWriter, timeout time.Duration) *KafkaDispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &KafkaDispatcher{writer: writer, timeout: timeout}
}

func (d *KafkaDispatcher) Dispatch(event domain.Event) error {
	value, err := json.Marshal(envelope{Type: event.Type(), OccurredAt: time.Now().UTC(), Payload: event})
	if err != nil {
		return errors.Wrapf(err, "encode %s", event.Type())
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	err = d.writer.WriteMessages(ctx, kafka.Message{Key: []byte(event.Type()), Value: value})
	if err != nil {
		return errors.Wrapf(err, "publish %s", event.Type())
	}
	log.WithField("event", event.Type()).Debug("kafka message sent")
	return nil
}

func (d *KafkaDispatcher) Close() error {
	return d.writer.Close()
}
