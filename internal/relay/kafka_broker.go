package relay

import (
	"context"
	"errors"
	"time"

	"stogram_server/internal/config"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// kafkaBroker Kafka 中继
// 多实例部署时各网关实例以独立消费组消费同一主题
type kafkaBroker struct {
	writer *kafka.Writer
	reader *kafka.Reader
}

func newKafkaBroker(conf config.RelayConfig) *kafkaBroker {
	b := &kafkaBroker{}
	b.writer = &kafka.Writer{
		Addr:                   kafka.TCP(conf.HostPort),
		Topic:                  conf.ChatTopic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           conf.Timeout * time.Second,
		RequiredAcks:           kafka.RequireNone,
		AllowAutoTopicCreation: false,
	}
	b.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{conf.HostPort},
		Topic:          conf.ChatTopic,
		CommitInterval: conf.Timeout * time.Second,
		GroupID:        "stogram_gateway",
		StartOffset:    kafka.LastOffset,
	})
	return b
}

// EnsureTopic 创建聊天主题（已存在时 Kafka 返回成功）
func EnsureTopic(conf config.RelayConfig) error {
	conn, err := kafka.Dial("tcp", conf.HostPort)
	if err != nil {
		return err
	}
	defer conn.Close()

	return conn.CreateTopics(kafka.TopicConfig{
		Topic:             conf.ChatTopic,
		NumPartitions:     conf.Partition,
		ReplicationFactor: 1,
	})
}

// Publish 写入 Kafka 主题
func (b *kafkaBroker) Publish(ctx context.Context, key, value []byte) error {
	return b.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: value})
}

// Consume 阻塞消费 Kafka 主题
func (b *kafkaBroker) Consume(ctx context.Context, handler func(value []byte)) {
	for {
		msg, err := b.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			zap.L().Error("kafka read message", zap.Error(err))
			continue
		}
		handler(msg.Value)
	}
}

func (b *kafkaBroker) Close() error {
	var errs []error
	if err := b.writer.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := b.reader.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
