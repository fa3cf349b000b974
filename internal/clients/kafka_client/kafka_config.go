package kafka_client

import "github.com/spacesedan/fieldpulse/config"

type KafkaConfig struct {
	Broker          string
	GroupID         string
	FeedbackTopic   string
	ResultsTopic    string
	TransactionalID string
}

func NewKafkaConfig(cfg *config.Config) KafkaConfig {
	return KafkaConfig{
		Broker:          cfg.KafkaBroker,
		GroupID:         cfg.KafkaGroupID,
		FeedbackTopic:   cfg.KafkaFeedbackTopic,
		ResultsTopic:    cfg.KafkaResultsTopic,
		TransactionalID: cfg.KafkaTransactionalID,
	}
}
