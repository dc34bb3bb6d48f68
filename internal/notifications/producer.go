package notifications

import (
	"context"
	"fmt"
	"time"

	"revticket/internal/shared/config"

	"github.com/IBM/sarama"
)

// Producer publishes booking notifications to Kafka
type Producer interface {
	Publish(ctx context.Context, notification *Notification) error
	HealthCheck(ctx context.Context) error
	Close() error
}

type kafkaProducer struct {
	producer sarama.SyncProducer
	topic    string
	brokers  []string
}

// NewKafkaProducer creates a sync producer with idempotent writes and hash
// partitioning on the booking id.
func NewKafkaProducer(cfg *config.Config) (Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Timeout = 10 * time.Second
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner
	saramaConfig.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(cfg.Kafka.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &kafkaProducer{
		producer: producer,
		topic:    cfg.Kafka.NotificationTopic,
		brokers:  cfg.Kafka.Brokers,
	}, nil
}

func (p *kafkaProducer) Publish(_ context.Context, notification *Notification) error {
	messageBytes, err := notification.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(notification.GetPartitionKey()),
		Value:     sarama.ByteEncoder(messageBytes),
		Timestamp: notification.CreatedAt,
	}

	if _, _, err := p.producer.SendMessage(message); err != nil {
		return fmt.Errorf("failed to send notification to Kafka: %w", err)
	}
	return nil
}

func (p *kafkaProducer) HealthCheck(_ context.Context) error {
	client, err := sarama.NewClient(p.brokers, sarama.NewConfig())
	if err != nil {
		return fmt.Errorf("kafka unreachable: %w", err)
	}
	defer client.Close()

	if len(client.Brokers()) == 0 {
		return fmt.Errorf("no kafka brokers available")
	}
	return nil
}

func (p *kafkaProducer) Close() error {
	return p.producer.Close()
}
