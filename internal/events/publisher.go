// Package events fans history entries out to an AMQP exchange so other
// processes can follow the audit trail.
package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/mmynk/debtbook/internal/metrics"
	"github.com/mmynk/debtbook/internal/models"
)

// RoutingKey is used for every history message.
const RoutingKey = "history"

const (
	defaultMaxAttempts = 3
	publishTimeout     = 5 * time.Second
	maxBackoff         = 30 * time.Second
	queueSize          = 256
	drainTimeout       = 10 * time.Second
)

// ErrQueueFull is returned by PublishHistory when the outbound buffer is
// full. The entry is dropped; it is still in the history table.
var ErrQueueFull = errors.New("history publish queue is full")

// channel is the subset of *amqp091.Channel the publisher uses.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

type connection interface {
	Channel() (channel, error)
	Close() error
}

type amqpConnection struct {
	*amqp091.Connection
}

func (c amqpConnection) Channel() (channel, error) {
	ch, err := c.Connection.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func dialAMQP(url string) (connection, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, err
	}
	return amqpConnection{conn}, nil
}

// Publisher publishes history entries to a durable direct exchange.
// It implements history.Publisher. Entries are buffered and sent by a
// background worker, so callers never wait on the broker.
type Publisher struct {
	url      string
	exchange string
	queue    string
	dial     func(url string) (connection, error)

	maxAttempts int
	backoff     func(attempt int) time.Duration
	wait        func(ctx context.Context, d time.Duration) error

	// pending feeds the worker. closed guards sends after Close.
	pendingMu sync.RWMutex
	pending   chan models.History
	closed    bool

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu   sync.Mutex
	conn connection
	ch   channel
}

// NewPublisher connects to url and declares the exchange. If queue is not
// empty it is declared and bound with RoutingKey.
func NewPublisher(url, exchange, queue string) (*Publisher, error) {
	return newPublisher(url, exchange, queue, dialAMQP)
}

func newPublisher(url, exchange, queue string, dial func(string) (connection, error)) (*Publisher, error) {
	p := &Publisher{
		url:         url,
		exchange:    exchange,
		queue:       queue,
		dial:        dial,
		maxAttempts: defaultMaxAttempts,
		backoff:     exponentialBackoff,
		wait:        sleepContext,
		pending:     make(chan models.History, queueSize),
		done:        make(chan struct{}),
	}
	if err := p.connect(); err != nil {
		return nil, err
	}
	p.ctx, p.cancel = context.WithCancel(context.Background())
	go p.run()
	return p, nil
}

// run drains pending until it is closed.
func (p *Publisher) run() {
	defer close(p.done)
	for entry := range p.pending {
		if err := p.publishEntry(p.ctx, entry); err != nil {
			metrics.HistoryPublishFailures.Inc()
			slog.Warn("Failed to publish history entry",
				"history_id", entry.ID,
				"action", entry.Action,
				"error", err,
			)
		}
	}
}

// connect must be called with mu held or before the publisher is shared.
func (p *Publisher) connect() error {
	conn, err := p.dial(p.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := setup(ch, p.exchange, p.queue); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}

	p.conn = conn
	p.ch = ch
	return nil
}

func setup(ch channel, exchange, queue string) error {
	err := ch.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	if queue == "" {
		return nil
	}

	_, err = ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(queue, RoutingKey, exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// PublishHistory queues one entry for the background worker. It does not
// block: a full buffer returns ErrQueueFull and a closed publisher returns
// amqp091.ErrClosed.
func (p *Publisher) PublishHistory(ctx context.Context, entry models.History) error {
	p.pendingMu.RLock()
	defer p.pendingMu.RUnlock()

	if p.closed {
		return amqp091.ErrClosed
	}
	select {
	case p.pending <- entry:
		return nil
	default:
		return ErrQueueFull
	}
}

// publishEntry sends one entry. Connection errors trigger a reconnect and
// retry with exponential backoff; the backoff ends early when ctx is done.
func (p *Publisher) publishEntry(ctx context.Context, entry models.History) error {
	body, err := NewHistoryMessage(entry).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for attempt := 0; ; attempt++ {
		err = p.publish(ctx, body, entry.Timestamp)
		if err == nil {
			slog.DebugContext(ctx, "Published history message",
				"history_id", entry.ID,
				"action", entry.Action,
				"exchange", p.exchange,
			)
			return nil
		}
		if !isConnectionError(err) || attempt+1 >= p.maxAttempts {
			return fmt.Errorf("publish message: %w", err)
		}

		wait := p.backoff(attempt)
		slog.WarnContext(ctx, "AMQP publish failed, reconnecting",
			"attempt", attempt+1,
			"backoff", wait,
			"error", err,
		)
		if err := p.wait(ctx, wait); err != nil {
			return err
		}

		p.closeLocked()
		if err := p.connect(); err != nil {
			slog.WarnContext(ctx, "AMQP reconnect failed", "error", err)
		}
	}
}

func (p *Publisher) publish(ctx context.Context, body []byte, ts time.Time) error {
	if p.ch == nil {
		return amqp091.ErrClosed
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return p.ch.PublishWithContext(
		ctx,
		p.exchange, // exchange
		RoutingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    ts,
			Body:         body,
		},
	)
}

// Close stops accepting entries, waits up to drainTimeout for the queued
// ones to be sent, then closes the channel and connection.
func (p *Publisher) Close() error {
	p.pendingMu.Lock()
	if !p.closed {
		p.closed = true
		close(p.pending)
	}
	p.pendingMu.Unlock()

	timer := time.NewTimer(drainTimeout)
	defer timer.Stop()
	select {
	case <-p.done:
	case <-timer.C:
		slog.Warn("Timed out draining history publish queue", "pending", len(p.pending))
	}
	p.cancel()
	<-p.done

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeLocked()
}

func (p *Publisher) closeLocked() error {
	if p.ch != nil {
		p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		err := p.conn.Close()
		p.conn = nil
		return err
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// exponentialBackoff returns 1s, 2s, 4s, ... capped at 30s.
func exponentialBackoff(attempt int) time.Duration {
	if attempt > 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := err.Error()
	for _, s := range []string{"connection", "EOF", "broken pipe", "closed network"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
