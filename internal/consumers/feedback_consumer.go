package consumers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/google/uuid"
	"github.com/spacesedan/fieldpulse/internal/clients/kafka_client"
	"github.com/spacesedan/fieldpulse/internal/metrics"
	"github.com/spacesedan/fieldpulse/internal/models"
	"github.com/spacesedan/fieldpulse/internal/utils"
)

const shutdownFlushTimeout = 10 * time.Second

type MessageSource interface {
	Next(ctx context.Context) (*kafka.Message, error)
}

type Committer interface {
	Commit(ctx context.Context, msg *kafka.Message) error
}

type Publisher interface {
	PublishBatch(ctx context.Context, topic string, records []kafka_client.Record) error
}

type Analyzer interface {
	Analyze(text string) (models.AnalysisResult, error)
}

// pending is a consumed message waiting for its batch to be published.
// Skipped messages carry no record and are only committed.
type pending struct {
	msg    *kafka.Message
	record *kafka_client.Record
}

type FeedbackConsumer struct {
	source       MessageSource
	committer    Committer
	publisher    Publisher
	analyzer     Analyzer
	resultsTopic string

	batchTimeout time.Duration
	buffer       *utils.BatchBuffer[pending]

	now   func() time.Time
	newID func() string
}

type Option func(*FeedbackConsumer)

func WithBatchSize(n int) Option {
	return func(c *FeedbackConsumer) {
		c.buffer = utils.NewBatchBuffer[pending](n)
	}
}

func WithBatchTimeout(d time.Duration) Option {
	return func(c *FeedbackConsumer) {
		if d > 0 {
			c.batchTimeout = d
		}
	}
}

func NewFeedbackConsumer(source MessageSource, committer Committer, publisher Publisher, analyzer Analyzer, resultsTopic string, opts ...Option) *FeedbackConsumer {
	c := &FeedbackConsumer{
		source:       source,
		committer:    committer,
		publisher:    publisher,
		analyzer:     analyzer,
		resultsTopic: resultsTopic,
		batchTimeout: utils.BATCH_TIMEOUT,
		buffer:       utils.NewBatchBuffer[pending](utils.BATCH_SIZE),
		now:          time.Now,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run consumes feedback until ctx is cancelled, publishing analyzed results
// in batches and committing offsets only after a batch is published.
// It returns a non-nil error when the analyzer is unavailable or a batch
// cannot be published; uncommitted messages are redelivered on restart.
func (c *FeedbackConsumer) Run(ctx context.Context) error {
	slog.Info("[FeedbackConsumer] Listening for messages...",
		slog.String("results_topic", c.resultsTopic))

	ticker := time.NewTicker(c.batchTimeout)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Warn("[FeedbackConsumer] Stopping consumer...")
			flushCtx, cancel := context.WithTimeout(context.Background(), shutdownFlushTimeout)
			err := c.flush(flushCtx)
			cancel()
			return err
		case <-ticker.C:
			if err := c.flush(ctx); err != nil {
				return err
			}
		default:
			msg, err := c.source.Next(ctx)
			if err != nil {
				if ctx.Err() == nil {
					utils.HandleConsumerError(err)
				}
				continue
			}
			if msg == nil {
				continue
			}

			full, err := c.handle(msg)
			if err != nil {
				return err
			}
			if full {
				if err := c.flush(ctx); err != nil {
					return err
				}
			}
		}
	}
}

func (c *FeedbackConsumer) handle(msg *kafka.Message) (bool, error) {
	var submission models.FeedbackSubmission
	if err := utils.DeserializeFromJSON(msg.Value, &submission); err != nil {
		return c.skip(msg, "malformed payload"), nil
	}
	if submission.FeedbackID == "" {
		return c.skip(msg, "missing feedback id"), nil
	}
	if strings.TrimSpace(submission.Text) == "" {
		return c.skip(msg, "blank text"), nil
	}

	result, err := c.analyzer.Analyze(submission.Text)
	if err != nil {
		metrics.ConsumerMessagesTotal.WithLabelValues("failed").Inc()
		slog.Error("[FeedbackConsumer] Analysis failed, stopping without commit",
			slog.String("feedback_id", submission.FeedbackID),
			slog.String("error", err.Error()))
		return false, fmt.Errorf("analyze feedback %s: %w", submission.FeedbackID, err)
	}

	value, err := utils.SerializeToJSON(models.AnalyzedFeedback{
		AnalysisID: c.newID(),
		FeedbackID: submission.FeedbackID,
		Source:     submission.Source,
		AnalyzedAt: c.now().UTC(),
		Result:     result,
	})
	if err != nil {
		return false, fmt.Errorf("encode result for %s: %w", submission.FeedbackID, err)
	}

	metrics.ConsumerMessagesTotal.WithLabelValues("analyzed").Inc()
	return c.buffer.Add(pending{
		msg:    msg,
		record: &kafka_client.Record{Key: []byte(submission.FeedbackID), Value: value},
	}), nil
}

func (c *FeedbackConsumer) skip(msg *kafka.Message, reason string) bool {
	metrics.ConsumerMessagesTotal.WithLabelValues("skipped").Inc()
	slog.Warn("[FeedbackConsumer] Skipping message",
		slog.String("reason", reason),
		slog.Int("partition", int(msg.TopicPartition.Partition)),
		slog.String("offset", msg.TopicPartition.Offset.String()))
	return c.buffer.Add(pending{msg: msg})
}

func (c *FeedbackConsumer) flush(ctx context.Context) error {
	batch := c.buffer.GetAndClear()
	if len(batch) == 0 {
		return nil
	}

	records := make([]kafka_client.Record, 0, len(batch))
	for _, p := range batch {
		if p.record != nil {
			records = append(records, *p.record)
		}
	}

	if len(records) > 0 {
		if err := c.publisher.PublishBatch(ctx, c.resultsTopic, records); err != nil {
			return fmt.Errorf("publish %d results: %w", len(records), err)
		}
		metrics.ConsumerBatchSize.Observe(float64(len(records)))
	}

	for _, msg := range latestPerPartition(batch) {
		if err := c.committer.Commit(ctx, msg); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			slog.Warn("[FeedbackConsumer] Failed to commit offset, batch may be redelivered",
				slog.String("error", err.Error()))
		}
	}

	slog.Info("[FeedbackConsumer] Flushed batch",
		slog.Int("messages", len(batch)),
		slog.Int("published", len(records)))
	return nil
}

// latestPerPartition keeps the highest offset consumed from each partition,
// in first-seen partition order.
func latestPerPartition(batch []pending) []*kafka.Message {
	index := make(map[int32]int)
	var out []*kafka.Message
	for _, p := range batch {
		part := p.msg.TopicPartition.Partition
		i, ok := index[part]
		if !ok {
			index[part] = len(out)
			out = append(out, p.msg)
			continue
		}
		if p.msg.TopicPartition.Offset > out[i].TopicPartition.Offset {
			out[i] = p.msg
		}
	}
	return out
}
