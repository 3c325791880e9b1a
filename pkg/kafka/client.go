// Package kafka 提供了与 Kafka 消息队列交互的功能。
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"filing-advisor-go/internal/config"
	"filing-advisor-go/pkg/log"
	"filing-advisor-go/pkg/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/rotisserie/eris"
	"github.com/segmentio/kafka-go"
)

// DefaultMaxAttempts 是一条任务最多处理的次数，超过后提交 offset 放弃。
const DefaultMaxAttempts = 3

// TaskProcessor 解耦消费者与具体的导入实现。
type TaskProcessor interface {
	Process(ctx context.Context, task tasks.FilingIngestTask) error
}

// AttemptTracker 记录任务的失败次数，跨进程重启保留。
type AttemptTracker interface {
	Incr(ctx context.Context, taskID string) (int64, error)
	Reset(ctx context.Context, taskID string) error
}

// RedisAttemptTracker 使用 Redis 计数失败次数，key 保留 24 小时。
type RedisAttemptTracker struct {
	rdb *redis.Client
}

func NewRedisAttemptTracker(rdb *redis.Client) *RedisAttemptTracker {
	return &RedisAttemptTracker{rdb: rdb}
}

func attemptsKey(taskID string) string {
	return fmt.Sprintf("kafka:attempts:%s", taskID)
}

func (t *RedisAttemptTracker) Incr(ctx context.Context, taskID string) (int64, error) {
	key := attemptsKey(taskID)
	n, err := t.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	_ = t.rdb.Expire(ctx, key, 24*time.Hour).Err()
	return n, nil
}

func (t *RedisAttemptTracker) Reset(ctx context.Context, taskID string) error {
	return t.rdb.Del(ctx, attemptsKey(taskID)).Err()
}

func brokerList(brokers string) []string {
	var out []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// Producer 发送导入任务。
type Producer struct {
	writer *kafka.Writer
}

// NewProducer 初始化 Kafka 生产者。
func NewProducer(cfg config.KafkaConfig) *Producer {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokerList(cfg.Brokers)...),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Info("Kafka 生产者初始化成功")
	return &Producer{writer: w}
}

// PublishIngestTask 发送一个导入任务到 Kafka，以 TaskID 作为消息 key。
func (p *Producer) PublishIngestTask(ctx context.Context, task tasks.FilingIngestTask) error {
	taskBytes, err := json.Marshal(task)
	if err != nil {
		return eris.Wrap(err, "kafka: marshal task")
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(task.TaskID), Value: taskBytes}); err != nil {
		return eris.Wrapf(err, "kafka: publish task %s", task.TaskID)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// messageReader 是 *kafka.Reader 中消费者用到的方法。
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer 逐条处理导入任务。失败的任务原地重试，达到 maxAttempts 后提交 offset 终止重试。
type Consumer struct {
	reader      messageReader
	processor   TaskProcessor
	attempts    AttemptTracker
	maxAttempts int64
	retryDelay  time.Duration
}

// NewConsumer 创建一个消费者组成员。
func NewConsumer(cfg config.KafkaConfig, processor TaskProcessor, attempts AttemptTracker) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokerList(cfg.Brokers),
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	return newConsumer(r, processor, attempts)
}

func newConsumer(r messageReader, processor TaskProcessor, attempts AttemptTracker) *Consumer {
	return &Consumer{
		reader:      r,
		processor:   processor,
		attempts:    attempts,
		maxAttempts: DefaultMaxAttempts,
		retryDelay:  2 * time.Second,
	}
}

// Run 阻塞消费直到 ctx 取消或读取失败。
func (c *Consumer) Run(ctx context.Context) error {
	log.Info("Kafka 消费者已启动")
	defer func() {
		if err := c.reader.Close(); err != nil {
			log.Errorf("关闭 Kafka 消费者失败: %v", err)
		}
	}()

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				log.Info("Kafka 消费者已停止")
				return nil
			}
			log.Error("从 Kafka 读取消息失败", err)
			return eris.Wrap(err, "kafka: fetch message")
		}
		log.Infof("收到 Kafka 消息: offset %d", m.Offset)
		c.handle(ctx, m)
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *Consumer) handle(ctx context.Context, m kafka.Message) {
	var task tasks.FilingIngestTask
	if err := json.Unmarshal(m.Value, &task); err != nil || task.TaskID == "" {
		log.Errorf("无法解析 Kafka 消息: %v, value: %s", err, string(m.Value))
		// 消息格式错误，直接提交，避免阻塞队列
		c.commit(ctx, m)
		return
	}

	var local int64
	for {
		err := c.processor.Process(ctx, task)
		if err == nil {
			log.Infof("导入任务处理成功: TaskID=%s", task.TaskID)
			_ = c.attempts.Reset(ctx, task.TaskID)
			c.commit(ctx, m)
			return
		}
		log.Errorf("处理导入任务失败: TaskID=%s, Error: %v", task.TaskID, err)

		local++
		attempts, incErr := c.attempts.Incr(ctx, task.TaskID)
		if incErr != nil {
			// Redis 异常时退回本地计数
			log.Warnf("记录失败次数失败, 使用本地计数: %v", incErr)
			attempts = local
		}
		if attempts >= c.maxAttempts {
			log.Errorf("导入任务多次失败(>=%d)，提交 offset 终止重试: TaskID=%s", c.maxAttempts, task.TaskID)
			_ = c.attempts.Reset(ctx, task.TaskID)
			c.commit(ctx, m)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempts) * c.retryDelay):
		}
	}
}

func (c *Consumer) commit(ctx context.Context, m kafka.Message) {
	if err := c.reader.CommitMessages(ctx, m); err != nil {
		log.Errorf("提交 Kafka 消息 offset 失败: %v", err)
	}
}
