// Package eventbus mirrors match broadcasts onto an AMQP topic exchange for
// consumers outside the process.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"github.com/gokatarajesh/live-match-dashboard/internal/events"
)

const defaultBuffer = 1024

var publishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "live_match",
	Name:      "eventbus_messages_total",
	Help:      "Events mirrored to the broker, by result.",
}, []string{"result"})

// Channel is the subset of *amqp.Channel the publisher needs.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Options configures an AMQPPublisher.
type Options struct {
	Exchange     string
	IncludeTicks bool
	Buffer       int
}

// Envelope is the message body written to the exchange.
type Envelope struct {
	Type      string    `json:"type"`
	MatchID   string    `json:"matchId"`
	Channel   string    `json:"channel"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

type outgoing struct {
	key  string
	body []byte
}

// AMQPPublisher is an events.Publisher that queues encoded events and writes
// them to the broker from Run. Publish never blocks: when the queue is full
// the event is dropped and counted.
type AMQPPublisher struct {
	ch     Channel
	conn   *amqp.Connection
	opts   Options
	queue  chan outgoing
	logger zerolog.Logger
	now    func() time.Time
}

// Dial connects to url, declares the topic exchange and returns a publisher
// owning the connection.
func Dial(url string, opts Options, logger zerolog.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: 60 * time.Second,
		Locale:    "en_US",
	})
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	p, err := New(ch, opts, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

// New declares the exchange on ch and returns a publisher writing to it.
func New(ch Channel, opts Options, logger zerolog.Logger) (*AMQPPublisher, error) {
	if opts.Exchange == "" {
		return nil, fmt.Errorf("eventbus: exchange name is required")
	}
	if opts.Buffer <= 0 {
		opts.Buffer = defaultBuffer
	}
	if err := ch.ExchangeDeclare(opts.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", opts.Exchange, err)
	}
	return &AMQPPublisher{
		ch:     ch,
		opts:   opts,
		queue:  make(chan outgoing, opts.Buffer),
		logger: logger.With().Str("component", "eventbus").Str("exchange", opts.Exchange).Logger(),
		now:    time.Now,
	}, nil
}

// RoutingKey returns match.<matchId>.<kind>.
func RoutingKey(matchID string, evt events.Event) string {
	return "match." + matchID + "." + evt.Kind()
}

// Publish implements events.Publisher.
func (p *AMQPPublisher) Publish(matchID string, evt events.Event) {
	if !p.opts.IncludeTicks && evt.Kind() == events.KindTimeUpdate {
		return
	}

	channel, payload, err := events.Wire(evt)
	if err != nil {
		p.logger.Error().Err(err).Str("match_id", matchID).Msg("failed to encode event")
		publishedTotal.WithLabelValues("encode_error").Inc()
		return
	}
	body, err := json.Marshal(Envelope{
		Type:      evt.Kind(),
		MatchID:   matchID,
		Channel:   channel,
		Payload:   payload,
		Timestamp: p.now().UTC(),
	})
	if err != nil {
		p.logger.Error().Err(err).Str("match_id", matchID).Msg("failed to marshal event")
		publishedTotal.WithLabelValues("encode_error").Inc()
		return
	}

	select {
	case p.queue <- outgoing{key: RoutingKey(matchID, evt), body: body}:
	default:
		publishedTotal.WithLabelValues("dropped").Inc()
		p.logger.Warn().Str("match_id", matchID).Str("type", evt.Kind()).Msg("eventbus queue full, dropping event")
	}
}

// Run writes queued events until ctx is cancelled, then flushes what is
// already queued and closes the channel.
func (p *AMQPPublisher) Run(ctx context.Context) error {
	p.logger.Info().Msg("eventbus publisher started")
	for {
		select {
		case msg := <-p.queue:
			p.send(msg)
		case <-ctx.Done():
			p.drain()
			return p.Close()
		}
	}
}

func (p *AMQPPublisher) drain() {
	for {
		select {
		case msg := <-p.queue:
			p.send(msg)
		default:
			return
		}
	}
}

func (p *AMQPPublisher) send(msg outgoing) {
	err := p.ch.Publish(p.opts.Exchange, msg.key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Transient,
		Timestamp:    p.now().UTC(),
		Body:         msg.body,
	})
	if err != nil {
		publishedTotal.WithLabelValues("error").Inc()
		p.logger.Error().Err(err).Str("routing_key", msg.key).Msg("failed to publish event")
		return
	}
	publishedTotal.WithLabelValues("ok").Inc()
}

// Close releases the channel and, when Dial created it, the connection.
func (p *AMQPPublisher) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	p.logger.Info().Msg("eventbus publisher stopped")
	return err
}
