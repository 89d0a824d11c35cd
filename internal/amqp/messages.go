package amqp

import (
	"encoding/json"
	"fmt"

	"budgetly/internal/core"
)

// ContentType of every published change event.
const ContentType = "application/json"

// EncodeEvent converts a change event to its wire form.
func EncodeEvent(event core.ChangeEvent) ([]byte, error) {
	return json.Marshal(event)
}

// DecodeEvent parses a delivery body. Events without a kind are rejected.
func DecodeEvent(data []byte) (core.ChangeEvent, error) {
	var event core.ChangeEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return core.ChangeEvent{}, err
	}
	if event.Kind == "" {
		return core.ChangeEvent{}, fmt.Errorf("change event without kind")
	}
	return event, nil
}
