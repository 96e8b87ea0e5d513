package events

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Publisher emits order-lifecycle events. Emission is best effort; the
// fulfillment transactions never depend on it.
type Publisher interface {
	Publish(key string, env Envelope)
}

type KafkaPublisher struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	drained chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewKafkaPublisher(brokers []string, topic string, buf int) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true,
		},
		inbox:   make(chan kafka.Message, buf),
		drained: make(chan struct{}),
	}
}

func (p *KafkaPublisher) Start() {
	go func() {
		for m := range p.inbox {
			if err := p.w.WriteMessages(context.Background(), m); err != nil {
				log.Printf("publish event: %v", err)
			}
		}
		_ = p.w.Close()
		close(p.drained)
	}()
}

// Publish queues the event for the drain goroutine. After Close it
// drops the event instead; late callers must never hit a closed
// channel.
func (p *KafkaPublisher) Publish(key string, env Envelope) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		log.Printf("drop %s event: publisher closed", env.EventType)
		return
	}

	p.inbox <- kafka.Message{
		Key:   []byte(key),
		Value: MustMarshal(env),
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(env.EventType)},
			{Key: "x-event-version", Value: []byte("1")},
		},
	}
}

// Close stops intake, flushes what is already queued, and waits for
// the writer to finish. Safe to call more than once. Callers should
// close only after no more Publish calls are expected; a straggler is
// dropped, not panicked on.
func (p *KafkaPublisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		<-p.drained
		return
	}
	p.closed = true
	close(p.inbox)
	p.mu.Unlock()

	<-p.drained
}
