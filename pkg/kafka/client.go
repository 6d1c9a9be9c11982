// Package kafka 提供了与 Kafka 消息队列交互的功能。
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"

	"kanto-ml/internal/config"
	"kanto-ml/pkg/log"
	"kanto-ml/pkg/tasks"
)

// maxAttempts 是同一任务允许执行的次数上限。
const maxAttempts = 3

// retryDelay 是两次重试之间的基础等待时间，按次数线性增长。
var retryDelay = 2 * time.Second

// maxFetchBackoff 限制拉取失败后的最长等待时间。
var maxFetchBackoff = 30 * time.Second

// TaskProcessor defines the interface for any service that can process a sync task.
type TaskProcessor interface {
	Process(ctx context.Context, task tasks.CatalogSyncTask) error
}

var producer *kafka.Writer

// InitProducer 初始化 Kafka 生产者。
func InitProducer(cfg config.KafkaConfig) {
	producer = &kafka.Writer{
		Addr:                   kafka.TCP(brokerList(cfg.Brokers)...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	log.Info("Kafka 生产者初始化成功")
}

// CloseProducer 关闭 Kafka 生产者。
func CloseProducer() {
	if producer == nil {
		return
	}
	if err := producer.Close(); err != nil {
		log.Errorf("关闭 Kafka 生产者失败: %v", err)
	}
}

// ProduceSyncTask 发送一个同步任务到 Kafka。
func ProduceSyncTask(ctx context.Context, task tasks.CatalogSyncTask) error {
	if producer == nil {
		return errors.New("kafka producer is not initialized")
	}
	taskBytes, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return producer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(task.TaskID),
		Value: taskBytes,
	})
}

// messageReader 是消费循环用到的 *kafka.Reader 方法子集。
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// StartConsumer 启动一个 Kafka 消费者来处理同步任务，ctx 取消时退出。
// rdb 为 nil 时失败的任务不会重试。
func StartConsumer(ctx context.Context, cfg config.KafkaConfig, processor TaskProcessor, rdb *redis.Client) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokerList(cfg.Brokers),
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	defer func() {
		if err := r.Close(); err != nil {
			log.Errorf("关闭 Kafka 消费者失败: %v", err)
		}
	}()

	log.Infof("Kafka 消费者已启动，正在监听主题 '%s'", cfg.Topic)
	consume(ctx, r, processor, rdb)
}

// consume 循环拉取并处理消息，只有 ctx 取消时才返回。
func consume(ctx context.Context, r messageReader, processor TaskProcessor, rdb *redis.Client) {
	fetchFailures := 0
	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("Kafka 消费者收到停止信号, 退出")
				return
			}
			fetchFailures++
			log.Errorf("从 Kafka 读取消息失败 (连续第 %d 次): %v", fetchFailures, err)
			select {
			case <-ctx.Done():
				log.Info("Kafka 消费者收到停止信号, 退出")
				return
			case <-time.After(fetchBackoff(fetchFailures)):
			}
			continue
		}
		fetchFailures = 0

		var task tasks.CatalogSyncTask
		if err := json.Unmarshal(m.Value, &task); err != nil {
			log.Errorf("无法解析 Kafka 消息: %v, value: %s", err, string(m.Value))
			// 消息格式错误，直接提交，避免阻塞队列
			commit(ctx, r, m)
			continue
		}

		log.Infof("开始处理同步任务: TaskID=%s, City=%q, offset=%d", task.TaskID, task.City, m.Offset)
		if !processWithRetry(ctx, processor, rdb, task) && ctx.Err() != nil {
			// 停机时未完成的任务不提交，重启后重新投递
			return
		}
		commit(ctx, r, m)
	}
}

// fetchBackoff 按连续失败次数线性退避，上限 maxFetchBackoff。
func fetchBackoff(failures int) time.Duration {
	d := retryDelay * time.Duration(failures)
	if d > maxFetchBackoff {
		return maxFetchBackoff
	}
	return d
}

// processWithRetry 在原地重试失败的任务，返回任务是否最终成功。
func processWithRetry(ctx context.Context, processor TaskProcessor, rdb *redis.Client, task tasks.CatalogSyncTask) bool {
	for local := 1; ; local++ {
		err := processor.Process(ctx, task)
		if err == nil {
			log.Infof("同步任务处理成功: TaskID=%s", task.TaskID)
			if rdb != nil {
				_ = rdb.Del(ctx, attemptsKey(task.TaskID)).Err()
			}
			return true
		}
		log.Errorf("处理同步任务失败: TaskID=%s, 第 %d 次, Error: %v", task.TaskID, local, err)
		if ctx.Err() != nil {
			return false
		}
		if shouldGiveUp(ctx, rdb, task.TaskID, local) {
			log.Errorf("同步任务多次失败，提交 offset 终止重试: TaskID=%s", task.TaskID)
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(retryDelay * time.Duration(local)):
		}
	}
}

// shouldGiveUp 使用 Redis 累计失败次数，进程重启后计数仍然有效。
// 未配置 Redis 时不重试；Redis 异常时退回到本地计数 local。
func shouldGiveUp(ctx context.Context, rdb *redis.Client, taskID string, local int) bool {
	if rdb == nil {
		return true
	}
	key := attemptsKey(taskID)
	attempts, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		log.Warnf("记录任务失败次数失败: %v", err)
		return local >= maxAttempts
	}
	_ = rdb.Expire(ctx, key, 24*time.Hour).Err()
	return attempts >= maxAttempts
}

func commit(ctx context.Context, r messageReader, m kafka.Message) {
	if err := r.CommitMessages(ctx, m); err != nil {
		log.Errorf("提交 Kafka 消息 offset 失败: %v", err)
	}
}

func attemptsKey(taskID string) string {
	return fmt.Sprintf("kafka:attempts:%s", taskID)
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
