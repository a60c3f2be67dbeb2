// Package event 将测验结果等领域事件发布到 RabbitMQ topic exchange
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"edu_portal_backend/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	DefaultExchange = "edu_portal.events"

	TypeQuizFinished = "quiz.finished"
)

// QuizFinished 测验结束事件的载荷
type QuizFinished struct {
	UserID     string    `json:"userId"`
	QuizKind   string    `json:"quizKind"`
	TestID     string    `json:"testId,omitempty"`
	Correct    int       `json:"correct"`
	Total      int       `json:"total"`
	Percentage int       `json:"percentage"`
	TimedOut   bool      `json:"timedOut"`
	FinishedAt time.Time `json:"finishedAt"`
}

type Envelope struct {
	Type       string      `json:"type"`
	Payload    interface{} `json:"payload"`
	OccurredAt time.Time   `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
	Close() error
}

// NopPublisher 未配置消息队列时使用
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	logger.Log.Debug("Event publishing disabled, skipping event", zap.String("type", eventType))
	return nil
}

func (NopPublisher) Close() error { return nil }

type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewPublisher url 为空时返回 NopPublisher
func NewPublisher(url, exchange string) (Publisher, error) {
	if url == "" {
		logger.Log.Info("RabbitMQ URL is empty, event publishing is disabled")
		return NopPublisher{}, nil
	}
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	logger.Log.Info("Event publisher initialized", zap.String("exchange", exchange))
	return &AMQPPublisher{conn: conn, channel: channel, exchange: exchange}, nil
}

// Publish 以事件类型作为 routing key
func (p *AMQPPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	body, err := json.Marshal(Envelope{Type: eventType, Payload: payload, OccurredAt: time.Now()})
	if err != nil {
		return err
	}

	// amqp.Channel 不支持并发发布
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.channel.PublishWithContext(ctx,
		p.exchange,
		eventType,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
