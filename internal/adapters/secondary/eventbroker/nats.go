// Package eventbroker publishes domain lifecycle events (sign-up,
// authentication, admin actions) onto a JetStream stream so other
// services can react without the router blocking on their behalf.
package eventbroker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NatsBroker implements ports.DomainEventPublisher over a JetStream
// stream. One subject per event type (e.g. "identity.user.authenticated"),
// all falling under the configured subject pattern.
type NatsBroker struct {
	js jetstream.JetStream
}

// NewNatsBroker dials url and ensures a stream named streamName exists,
// accepting every subject matching subjectPattern. Pool operators running
// more than one cognito-local instance against the same NATS server can
// give each its own stream/subject namespace instead of sharing "IDENTITY".
func NewNatsBroker(url, streamName, subjectPattern string) (*NatsBroker, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("jetstream init: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{subjectPattern},
		Storage:  jetstream.FileStorage,
		Replicas: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("create stream: %w", err)
	}

	return &NatsBroker{js: js}, nil
}

// Publish marshals payload and publishes it on the subject named by
// eventType, waiting for JetStream's persistence ack.
func (n *NatsBroker) Publish(ctx context.Context, eventType string, payload map[string]any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ack, err := n.js.Publish(ctx, eventType, data)
	if err != nil {
		return fmt.Errorf("nats publish: %w", err)
	}
	_ = ack
	return nil
}
