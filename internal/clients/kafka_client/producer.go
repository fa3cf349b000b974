package kafka_client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

// Record is one keyed message to publish.
type Record struct {
	Key   []byte
	Value []byte
}

type KafkaProducer struct {
	producer *kafka.Producer
}

// NewProducer creates a transactional producer so each batch of results is
// published atomically.
func NewProducer(cfg KafkaConfig) (*KafkaProducer, error) {
	slog.Info("[KafkaClient] Initializing Kafka Producer...",
		slog.String("broker", cfg.Broker),
		slog.String("transactional_id", cfg.TransactionalID))

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":                     cfg.Broker,
		"enable.idempotence":                    true,
		"acks":                                  "all",
		"max.in.flight.requests.per.connection": 1,
		"transactional.id":                      cfg.TransactionalID,
	})
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create producer: %w", err)
	}

	if err := p.InitTransactions(context.Background()); err != nil {
		p.Close()
		return nil, fmt.Errorf("[KafkaClient] Failed to init transactions: %w", err)
	}

	go logDeliveryErrors(p)

	slog.Info("[KafkaClient] Kafka Producer initialized successfully")
	return &KafkaProducer{producer: p}, nil
}

func logDeliveryErrors(p *kafka.Producer) {
	for e := range p.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				slog.Warn("[KafkaClient] Delivery failed",
					slog.String("error", ev.TopicPartition.Error.Error()))
			}
		case kafka.Error:
			slog.Warn("[KafkaClient] Producer error", slog.String("error", ev.Error()))
		}
	}
}

func (kp *KafkaProducer) Close() {
	slog.Info("[KafkaClient] Shutting down Kafka producer...")
	if remaining := kp.producer.Flush(FLUSH_TIMEOUT_MS); remaining > 0 {
		slog.Warn("[KafkaClient] Not all messages were delivered before shutdown",
			slog.Int("remaining", remaining))
	}
	kp.producer.Close()
	slog.Info("[KafkaClient] Kafka producer shut down")
}

// PublishBatch produces records to topic inside a single transaction.
func (kp *KafkaProducer) PublishBatch(ctx context.Context, topic string, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	if err := kp.producer.BeginTransaction(); err != nil {
		return fmt.Errorf("[KafkaClient] failed to begin transaction: %w", err)
	}

	for _, r := range records {
		msg := &kafka.Message{
			TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
			Key:            r.Key,
			Value:          r.Value,
		}

		var err error
		for i := 0; i < PRODUCE_RETRIES; i++ {
			if err = kp.producer.Produce(msg, nil); err == nil {
				break
			}
			slog.Warn("[KafkaClient] Failed to produce message, retrying...",
				slog.Int("attempt", i+1),
				slog.String("error", err.Error()))
		}
		if err != nil {
			return kp.abort(ctx, fmt.Errorf("[KafkaClient] produce: %w", err))
		}
	}

	var commitErr error
	for i := 0; i < COMMIT_RETRIES; i++ {
		if commitErr = kp.producer.CommitTransaction(ctx); commitErr == nil {
			break
		}
		if kafkaErr, ok := commitErr.(kafka.Error); ok && kafkaErr.TxnRequiresAbort() {
			return kp.abort(ctx, fmt.Errorf("[KafkaClient] commit transaction: %w", commitErr))
		}
		slog.Warn("[KafkaClient] Failed to commit transaction, retrying...",
			slog.Int("attempt", i+1),
			slog.String("error", commitErr.Error()))
	}
	if commitErr != nil {
		return kp.abort(ctx, fmt.Errorf("[KafkaClient] failed to commit transaction after %d tries: %w", COMMIT_RETRIES, commitErr))
	}

	slog.Info("[KafkaClient] Published batch to Kafka transactionally",
		slog.String("topic", topic),
		slog.Int("records", len(records)))
	return nil
}

func (kp *KafkaProducer) abort(ctx context.Context, cause error) error {
	if err := kp.producer.AbortTransaction(ctx); err != nil {
		return fmt.Errorf("%w (abort failed: %v)", cause, err)
	}
	return cause
}
