// Package notify publishes refresh events to NATS so other services can react to new items.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"

	"github.com/umputun/newsnexus/pkg/domain"
)

// RefreshEvent is published after every completed refresh
type RefreshEvent struct {
	Stats     domain.AggregationStats `json:"stats"`
	Failed    []string                `json:"failed,omitempty"` // "source: job" of failed jobs
	Annotated int                     `json:"annotated"`
}

// Publisher sends refresh events, a nil publisher does nothing
type Publisher struct {
	nc      *nats.Conn
	subject string
}

// Connect dials the NATS server
func Connect(url, subject string) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("newsnexus"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				lgr.Printf("[WARN] nats disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) { lgr.Printf("[INFO] nats reconnected to %s", c.ConnectedUrl()) }),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats %s: %w", url, err)
	}
	return &Publisher{nc: nc, subject: subject}, nil
}

// Publish sends the event as JSON with trace context in message headers
func (p *Publisher) Publish(ctx context.Context, ev RefreshEvent) error {
	if p == nil || p.nc == nil {
		return nil
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal refresh event: %w", err)
	}
	msg := &nats.Msg{Subject: p.subject, Data: data}
	otel.GetTextMapPropagator().Inject(ctx, (*headerCarrier)(msg))
	if err := p.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish to %s: %w", p.subject, err)
	}
	return nil
}

// Close drains and closes the connection
func (p *Publisher) Close() {
	if p == nil || p.nc == nil {
		return
	}
	if err := p.nc.Drain(); err != nil {
		lgr.Printf("[WARN] nats drain failed: %v", err)
		p.nc.Close()
	}
}

// headerCarrier adapts nats message headers for otel propagation
type headerCarrier nats.Msg

func (c *headerCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *headerCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *headerCarrier) Keys() []string {
	if c.Header == nil {
		return nil
	}
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}
