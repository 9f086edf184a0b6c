package rabbitmq_consumer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"search-service/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageHandler обрабатывает одно сообщение. Пакет сам решает, как делать ack/nack.
type MessageHandler func(ctx context.Context, delivery amqp.Delivery) error

// ErrPermanent помечает ошибки, после которых повтор бессмысленен
// (битое сообщение, нарушение контракта).
var ErrPermanent = errors.New("permanent message error")

// Permanent оборачивает ошибку в ErrPermanent.
func Permanent(err error) error {
	return fmt.Errorf("%w: %v", ErrPermanent, err)
}

// ConsumerConfig конфигурация для потребителя
type ConsumerConfig struct {
	rabbitmq_common.Config
	// Настройки очереди
	QueueName       string
	DeclareQueue    bool
	DurableQueue    bool
	ExclusiveQueue  bool
	AutoDeleteQueue bool
	QueueArgs       amqp.Table // например x-dead-letter-exchange
	// Обменник и привязка (если ExchangeNameForBind пустой, привязки нет)
	ExchangeNameForBind    string
	DeclareExchangeForBind bool
	ExchangeTypeForBind    string
	DurableExchangeForBind bool
	RoutingKeyForBind      string
	// QoS
	PrefetchCount int
	ConsumerTag   string

	Logger rabbitmq_common.Logger
}

func (c ConsumerConfig) validate() error {
	if err := c.Config.Validate(); err != nil {
		return fmt.Errorf("invalid base config: %w", err)
	}
	if !c.DeclareQueue && c.QueueName == "" {
		return fmt.Errorf("consumer: queue name is required if DeclareQueue is false")
	}
	if c.DeclareExchangeForBind && c.ExchangeTypeForBind == "" {
		return fmt.Errorf("consumer: exchange type is required if declaring an exchange for binding")
	}
	return nil
}

// Consumer читает очередь и обрабатывает каждое сообщение в своей горутине.
type Consumer struct {
	config          ConsumerConfig
	handler         MessageHandler
	connection      *amqp.Connection
	channel         *amqp.Channel
	actualQueueName string

	wg       sync.WaitGroup
	stop     chan struct{}
	stopOnce sync.Once
	mu       sync.Mutex
	loopDone chan struct{}

	Logger rabbitmq_common.Logger
}

// NewConsumer берет канал у менеджера и объявляет очередь, обменник и привязку.
func NewConsumer(cfg ConsumerConfig, handler MessageHandler, connManager *rabbitmq_common.ConnectionManager) (*Consumer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if handler == nil {
		return nil, fmt.Errorf("consumer: message handler is required")
	}
	if connManager == nil {
		return nil, fmt.Errorf("consumer: connection manager is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = rabbitmq_common.NewNoopLogger()
	}

	c := &Consumer{config: cfg, handler: handler, Logger: logger, stop: make(chan struct{})}

	conn, ch, err := connManager.GetChannel()
	if err != nil {
		return nil, fmt.Errorf("consumer: failed to get channel from manager: %w", err)
	}
	c.connection = conn
	c.channel = ch

	if err := c.setup(); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("consumer: setup failed: %w", err)
	}
	return c, nil
}

func (c *Consumer) setup() error {
	cfg := c.config

	if cfg.PrefetchCount > 0 {
		c.Logger.Debug("Setting QoS", "prefetch_count", cfg.PrefetchCount)
		if err := c.channel.Qos(cfg.PrefetchCount, 0, false); err != nil {
			return fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	c.actualQueueName = cfg.QueueName
	if cfg.DeclareQueue {
		c.Logger.Debug("Declaring queue", "name", cfg.QueueName, "durable", cfg.DurableQueue)
		q, err := c.channel.QueueDeclare(cfg.QueueName, cfg.DurableQueue, cfg.AutoDeleteQueue, cfg.ExclusiveQueue, false, cfg.QueueArgs)
		if err != nil {
			return fmt.Errorf("failed to declare queue '%s': %w", cfg.QueueName, err)
		}
		c.actualQueueName = q.Name
	}

	if cfg.DeclareExchangeForBind {
		c.Logger.Debug("Declaring exchange", "name", cfg.ExchangeNameForBind, "type", cfg.ExchangeTypeForBind)
		err := c.channel.ExchangeDeclare(cfg.ExchangeNameForBind, cfg.ExchangeTypeForBind, cfg.DurableExchangeForBind, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("failed to declare exchange '%s' for binding: %w", cfg.ExchangeNameForBind, err)
		}
	}

	if cfg.ExchangeNameForBind != "" {
		c.Logger.Debug("Binding queue to exchange",
			"queue_name", c.actualQueueName,
			"exchange_name", cfg.ExchangeNameForBind,
			"routing_key", cfg.RoutingKeyForBind,
		)
		if err := c.channel.QueueBind(c.actualQueueName, cfg.RoutingKeyForBind, cfg.ExchangeNameForBind, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue '%s' to exchange '%s': %w", c.actualQueueName, cfg.ExchangeNameForBind, err)
		}
	}

	c.Logger.Debug("Setup complete", "queue", c.actualQueueName)
	return nil
}

// Ack-решение по результату обработчика
type ackAction int

const (
	actionAck ackAction = iota
	actionRequeue
	actionReject
)

// decideAck: успех - ack; постоянная ошибка - reject без возврата;
// временная - один повтор, повторно доставленное сообщение отбрасывается.
func decideAck(err error, redelivered bool) ackAction {
	switch {
	case err == nil:
		return actionAck
	case errors.Is(err, ErrPermanent):
		return actionReject
	case redelivered:
		return actionReject
	default:
		return actionRequeue
	}
}

// StartConsuming блокируется до отмены ctx или закрытия соединения.
func (c *Consumer) StartConsuming(ctx context.Context) error {
	if c.channel == nil || c.connection == nil || c.connection.IsClosed() {
		return fmt.Errorf("consumer: not connected")
	}

	msgs, err := c.channel.Consume(c.actualQueueName, c.config.ConsumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consumer %s: failed to register on queue '%s': %w", c.config.ConsumerTag, c.actualQueueName, err)
	}

	c.Logger.Info("[*] Waiting for messages on queue", "queue_name", c.actualQueueName)

	loopDone := make(chan struct{})
	c.mu.Lock()
	c.loopDone = loopDone
	c.mu.Unlock()

	go func() {
		defer close(loopDone)
		dispatch(ctx, c.stop, msgs, &c.wg, c.process)
		c.Logger.Info("Consumption loop exited.", "consumer_tag", c.config.ConsumerTag)
	}()

	notifyClose := c.connection.NotifyClose(make(chan *amqp.Error, 1))
	select {
	case <-ctx.Done():
		c.Logger.Info("Context cancelled. Shutting down consumer.", "consumer_tag", c.config.ConsumerTag)
		return nil
	case amqpErr, ok := <-notifyClose:
		if !ok || amqpErr == nil {
			c.Logger.Info("Connection closed gracefully.", "consumer_tag", c.config.ConsumerTag)
			return nil
		}
		c.Logger.Error(amqpErr, "Connection closed for consumer.", "consumer_tag", c.config.ConsumerTag)
		return amqpErr
	}
}

// dispatch запускает обработчик на каждое сообщение, пока не закрыт stop,
// не отменен ctx и открыт msgs. wg.Add вызывается только внутри dispatch,
// поэтому wg.Wait после ее возврата безопасен. Обработчики получают
// контекст без отмены: начатое сообщение дорабатывается до конца.
func dispatch(ctx context.Context, stop <-chan struct{}, msgs <-chan amqp.Delivery, wg *sync.WaitGroup, handle func(context.Context, amqp.Delivery)) {
	handlerCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		default:
		}

		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case d, ok := <-msgs:
			if !ok {
				return
			}
			wg.Add(1)
			go func(delivery amqp.Delivery) {
				defer wg.Done()
				handle(handlerCtx, delivery)
			}(d)
		}
	}
}

func (c *Consumer) process(ctx context.Context, delivery amqp.Delivery) {
	processErr := c.handler(ctx, delivery)

	switch decideAck(processErr, delivery.Redelivered) {
	case actionAck:
		_ = delivery.Ack(false)
		c.Logger.Debug("[+] Message Ack'd", "delivery_tag", delivery.DeliveryTag)
	case actionRequeue:
		c.Logger.Error(processErr, "Handler error, requeueing message", "delivery_tag", delivery.DeliveryTag)
		_ = delivery.Nack(false, true)
	case actionReject:
		c.Logger.Error(processErr, "Handler error, rejecting message", "delivery_tag", delivery.DeliveryTag)
		_ = delivery.Nack(false, false)
	}
}

// Close останавливает раздачу, ждет текущие обработчики и закрывает канал.
// Соединением владеет менеджер.
func (c *Consumer) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })

	c.mu.Lock()
	loopDone := c.loopDone
	c.mu.Unlock()
	if loopDone != nil {
		<-loopDone
	}

	c.Logger.Debug("Waiting for message handlers to finish...")
	c.wg.Wait()

	if c.channel == nil {
		return nil
	}
	err := c.channel.Close()
	c.channel = nil
	c.Logger.Info("Consumer closed")
	return err
}
