package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type KafkaPublisher struct {
	writer *kafka.Writer
	prefix string
}

// NewKafkaPublisher returns a publisher whose topics are "<prefix>.<topic>".
// The writer has no default topic; every message names its own. Writes are
// asynchronous: Publish only reports encoding errors and delivery failures are
// logged when the batch completes.
func NewKafkaPublisher(brokers []string, prefix string, log logrus.FieldLogger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
			BatchTimeout:           50 * time.Millisecond,
			Async:                  true,
			Completion:             logCompletion(log),
		},
		prefix: prefix,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, event any) error {
	message, err := buildMessage(p.prefix, topic, key, event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, message)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func logCompletion(log logrus.FieldLogger) func([]kafka.Message, error) {
	return func(messages []kafka.Message, err error) {
		if err == nil {
			return
		}
		for _, message := range messages {
			log.WithError(err).
				WithField("topic", message.Topic).
				WithField("key", string(message.Key)).
				Warn("event delivery failed")
		}
	}
}

func buildMessage(prefix, topic, key string, event any) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Topic: qualifiedTopic(prefix, topic),
		Key:   []byte(key),
		Value: data,
	}, nil
}

func qualifiedTopic(prefix, topic string) string {
	prefix = strings.Trim(prefix, ". ")
	if prefix == "" {
		return topic
	}
	return prefix + "." + topic
}
