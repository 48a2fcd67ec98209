// Package events publishes parking domain events to RabbitMQ. Publishing is
// best effort: events are queued and sent by a background goroutine, and
// events that cannot be delivered are logged and dropped.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"smartparking/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	ExchangeName = "parking.events"

	TypeOccupancyReleased = "occupancy.released"
	TypeOccupancyHeld     = "occupancy.held"
)

const (
	defaultQueueSize   = 256
	defaultDialTimeout = 3 * time.Second
	publishTimeout     = 5 * time.Second
)

var (
	ErrQueueFull       = errors.New("event queue full")
	ErrPublisherClosed = errors.New("event publisher closed")
)

// Publisher sends parking events to the bus.
type Publisher interface {
	Publish(ctx context.Context, event models.ParkingEvent) error
	Close() error
}

// NewPublisher returns an AMQP publisher for url, or a no-op publisher when
// url is empty.
func NewPublisher(url string, logger *zap.Logger) Publisher {
	if url == "" {
		return NoopPublisher{}
	}
	return NewAMQPPublisher(url, logger)
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, models.ParkingEvent) error { return nil }
func (NoopPublisher) Close() error                                      { return nil }

// AMQPPublisher publishes to a durable topic exchange, routing on the event
// type. Publish only enqueues; a single goroutine owns the connection, dials
// lazily with a bounded timeout and backs off for RetryAfter after a failure.
type AMQPPublisher struct {
	URL         string
	Logger      *zap.Logger
	DialTimeout time.Duration
	RetryAfter  time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan pending
	done   chan struct{}

	// Owned by run.
	conn     *amqp.Connection
	ch       *amqp.Channel
	nextDial time.Time
}

type pending struct {
	routingKey string
	body       []byte
	at         time.Time
}

// NewAMQPPublisher starts the publishing goroutine. Close stops it.
func NewAMQPPublisher(url string, logger *zap.Logger) *AMQPPublisher {
	p := newAMQPPublisher(url, logger, defaultQueueSize)
	go p.run()
	return p
}

func newAMQPPublisher(url string, logger *zap.Logger, size int) *AMQPPublisher {
	return &AMQPPublisher{
		URL:         url,
		Logger:      logger,
		DialTimeout: defaultDialTimeout,
		RetryAfter:  5 * time.Second,
		queue:       make(chan pending, size),
		done:        make(chan struct{}),
	}
}

// Publish queues the event without waiting on the broker. It fails only when
// the queue is full or the publisher is closed.
func (p *AMQPPublisher) Publish(ctx context.Context, event models.ParkingEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal event failed: %w", err)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	select {
	case p.queue <- pending{routingKey: event.Type, body: body, at: time.Now().UTC()}:
		return nil
	default:
		p.log().Warn("Event dropped", zap.String("type", event.Type), zap.Error(ErrQueueFull))
		return ErrQueueFull
	}
}

func (p *AMQPPublisher) run() {
	defer close(p.done)
	for msg := range p.queue {
		if err := p.send(msg); err != nil {
			p.log().Warn("Event not published", zap.String("type", msg.routingKey), zap.Error(err))
		}
	}
	p.disconnect()
}

func (p *AMQPPublisher) send(msg pending) error {
	ch, err := p.channel()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    msg.at,
		Body:         msg.body,
	}
	if err := ch.PublishWithContext(ctx, ExchangeName, msg.routingKey, false, false, pub); err != nil {
		p.ch = nil
		return fmt.Errorf("rabbitmq: publish failed: %w", err)
	}
	return nil
}

func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	if p.conn == nil || p.conn.IsClosed() {
		if time.Now().Before(p.nextDial) {
			return nil, errors.New("rabbitmq: broker unreachable, waiting to redial")
		}
		conn, err := amqp.DialConfig(p.URL, amqp.Config{
			Heartbeat: 10 * time.Second,
			Locale:    "en_US",
			Dial:      amqp.DefaultDial(p.DialTimeout),
		})
		if err != nil {
			p.nextDial = time.Now().Add(p.RetryAfter)
			return nil, fmt.Errorf("rabbitmq: dial failed: %w", err)
		}
		p.conn = conn
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: channel open failed: %w", err)
	}
	if err := ch.ExchangeDeclare(
		ExchangeName, // name
		"topic",      // kind
		true,         // durable
		false,        // autoDelete
		false,        // internal
		false,        // noWait
		nil,          // args
	); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("rabbitmq: exchange declare failed: %w", err)
	}
	p.ch = ch
	return ch, nil
}

func (p *AMQPPublisher) disconnect() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// Close stops accepting events, waits for queued ones to be sent or dropped,
// and closes the connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	<-p.done
	return nil
}

func (p *AMQPPublisher) log() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

// SpotReleased builds the event for a hold released at at.
func SpotReleased(spot models.Spot, at time.Time) models.ParkingEvent {
	ev := models.ParkingEvent{
		Type:       TypeOccupancyReleased,
		SpotID:     spot.ID,
		SpotNumber: spot.Number,
		Status:     string(models.SpotAvailable),
		OccurredAt: at.UTC().Format(time.RFC3339),
	}
	if spot.OccupiedBy != nil {
		ev.UserID = *spot.OccupiedBy
	}
	return ev
}

// SpotHeld builds the event for a hold placed by a check-in.
func SpotHeld(res models.Reservation, at time.Time) models.ParkingEvent {
	return models.ParkingEvent{
		Type:          TypeOccupancyHeld,
		SpotID:        res.SpotID,
		SpotNumber:    res.SpotNumber,
		ReservationID: res.ID,
		UserID:        res.UserID,
		Status:        string(models.SpotOccupied),
		OccurredAt:    at.UTC().Format(time.RFC3339),
	}
}

// ReservationChanged builds a reservation.<status> event.
func ReservationChanged(res models.Reservation, at time.Time) models.ParkingEvent {
	return models.ParkingEvent{
		Type:          "reservation." + string(res.Status),
		SpotID:        res.SpotID,
		SpotNumber:    res.SpotNumber,
		ReservationID: res.ID,
		UserID:        res.UserID,
		Status:        string(res.Status),
		OccurredAt:    at.UTC().Format(time.RFC3339),
	}
}
