// Package broadcast fans newly stored locations out to other consumers
package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"khon-reep/models"

	"github.com/nsqio/go-nsq"
)

type Publisher interface {
	Publish(ctx context.Context, location *models.Location) error
	Stop()
}

// producer is the part of *nsq.Producer the publisher uses
type producer interface {
	Publish(topic string, body []byte) error
	Stop()
}

// LocationMessage is the body published for every stored location
type LocationMessage struct {
	Event       string           `json:"event"`
	Location    *models.Location `json:"location"`
	PublishedAt time.Time        `json:"published_at"`
}

const EventLocationCreated = "location.created"

type NSQPublisher struct {
	producer producer
	topic    string
}

// NewNSQPublisher connects a producer to the nsqd at addr
func NewNSQPublisher(addr, topic string) (*NSQPublisher, error) {
	cfg := nsq.NewConfig()
	cfg.DialTimeout = 5 * time.Second
	p, err := nsq.NewProducer(addr, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create nsq producer: %w", err)
	}
	p.SetLogger(log.Default(), nsq.LogLevelWarning)
	if err := p.Ping(); err != nil {
		p.Stop()
		return nil, fmt.Errorf("failed to reach nsqd at %s: %w", addr, err)
	}
	log.Printf("Publishing locations to nsq topic %q at %s", topic, addr)
	return newNSQPublisher(p, topic), nil
}

func newNSQPublisher(p producer, topic string) *NSQPublisher {
	return &NSQPublisher{producer: p, topic: topic}
}

func (p *NSQPublisher) Publish(ctx context.Context, location *models.Location) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(LocationMessage{
		Event:       EventLocationCreated,
		Location:    location,
		PublishedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode location %s: %w", location.ID, err)
	}
	if err := p.producer.Publish(p.topic, body); err != nil {
		return fmt.Errorf("failed to publish location %s: %w", location.ID, err)
	}
	return nil
}

func (p *NSQPublisher) Stop() {
	p.producer.Stop()
}

// NopPublisher is used when no message broker is configured
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, location *models.Location) error { return nil }
func (NopPublisher) Stop()                                                     {}
