// Package kafka moves ingestion tasks through a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/segmentio/kafka-go"

	"docqa-go/internal/config"
	"docqa-go/pkg/log"
	"docqa-go/pkg/tasks"
)

// TaskProcessor handles one ingestion task.
type TaskProcessor interface {
	Process(ctx context.Context, task tasks.IngestTask) error
}

// DefaultMaxMessageBytes bounds one encoded task when kafka.max_message_bytes is unset.
const DefaultMaxMessageBytes = 32 << 20

// ErrMessageTooLarge is returned by Produce for a task that exceeds the message limit.
var ErrMessageTooLarge = errors.New("ingest task exceeds the kafka message limit")

// Producer publishes ingestion tasks.
type Producer struct {
	writer   *kafka.Writer
	maxBytes int64
}

// NewProducer creates a Producer for the configured topic.
func NewProducer(cfg config.KafkaConfig) *Producer {
	maxBytes := maxMessageBytes(cfg)
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers(cfg)...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.LeastBytes{},
		BatchBytes:             maxBytes,
		AllowAutoTopicCreation: true,
	}
	log.Infof("[Kafka] producer ready for topic '%s' (max message %d bytes)", cfg.Topic, maxBytes)
	return &Producer{writer: w, maxBytes: maxBytes}
}

// Produce sends task, keyed by file name.
func (p *Producer) Produce(ctx context.Context, task tasks.IngestTask) error {
	value, err := encodeTask(task)
	if err != nil {
		return err
	}
	if int64(len(value)) > p.maxBytes {
		return fmt.Errorf("%w: %s encodes to %d bytes, limit %d", ErrMessageTooLarge, task.FileName, len(value), p.maxBytes)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(task.FileName),
		Value: value,
	})
}

// Close flushes pending writes.
func (p *Producer) Close() error {
	return p.writer.Close()
}

// StartConsumer reads tasks until ctx is done. Every message is committed
// once handled, whether processing succeeded or not; failures are only logged.
func StartConsumer(ctx context.Context, cfg config.KafkaConfig, processor TaskProcessor) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers(cfg),
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: int(maxMessageBytes(cfg)),
	})
	defer func() {
		if err := r.Close(); err != nil {
			log.Errorf("[Kafka] closing consumer: %v", err)
		}
	}()

	log.Infof("[Kafka] consumer listening on topic '%s'", cfg.Topic)
	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				log.Info("[Kafka] consumer stopped")
				return
			}
			log.Error("[Kafka] failed to read message", err)
			return
		}

		handleMessage(ctx, m.Value, processor)

		if err := r.CommitMessages(ctx, m); err != nil {
			log.Errorf("[Kafka] committing offset %d: %v", m.Offset, err)
		}
	}
}

// handleMessage decodes and processes one message value.
func handleMessage(ctx context.Context, value []byte, processor TaskProcessor) {
	task, err := decodeTask(value)
	if err != nil {
		log.Errorf("[Kafka] dropping malformed message: %v", err)
		return
	}
	log.Infof("[Kafka] processing task for %s (upload %d)", task.FileName, task.UploadID)
	if err := processor.Process(ctx, task); err != nil {
		log.Errorf("[Kafka] task for %s failed: %v", task.FileName, err)
		return
	}
	log.Infof("[Kafka] task for %s done", task.FileName)
}

func encodeTask(task tasks.IngestTask) ([]byte, error) {
	b, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("encode ingest task: %w", err)
	}
	return b, nil
}

func decodeTask(value []byte) (tasks.IngestTask, error) {
	var task tasks.IngestTask
	if err := json.Unmarshal(value, &task); err != nil {
		return task, fmt.Errorf("decode ingest task: %w", err)
	}
	if task.FileName == "" {
		return task, errors.New("decode ingest task: missing file name")
	}
	return task, nil
}

func maxMessageBytes(cfg config.KafkaConfig) int64 {
	if cfg.MaxMessageBytes > 0 {
		return cfg.MaxMessageBytes
	}
	return DefaultMaxMessageBytes
}

func brokers(cfg config.KafkaConfig) []string {
	var out []string
	for _, b := range strings.Split(cfg.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
