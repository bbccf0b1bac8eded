package service

import (
	"encoding/json"
	"fmt"

	"github.com/linkpro/linkpro/internal/app/model"
	"github.com/nats-io/nats.go"
)

// ClickPublisher fans click events out to NATS JetStream after they are
// committed to the store.
type ClickPublisher struct {
	js nats.JetStreamContext
}

func NewClickPublisher(js nats.JetStreamContext) (*ClickPublisher, error) {
	// Create the stream if it does not exist yet.
	if _, err := js.StreamInfo(model.ClickStreamName); err != nil {
		_, err = js.AddStream(&nats.StreamConfig{
			Name:     model.ClickStreamName,
			Subjects: []string{model.ClickStreamSubject},
			MaxBytes: model.ClickStreamMaxBytes,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create stream: %w", err)
		}
	}
	return &ClickPublisher{js: js}, nil
}

// Publish sends the event to the click stream.
func (p *ClickPublisher) Publish(event model.ClickEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, err = p.js.Publish(model.ClickStreamSubject, data)
	return err
}
