package myevents

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

type EventEnvelope struct {
	UID           string
	CreatedAt     time.Time
	Topic         string
	AggregateUID  string
	EventTypeName string
	EventPayload  string `datastore:",noindex"`
	Published     bool
}

func (e EventEnvelope) String() string {
	return e.Topic + "." + e.EventTypeName + "." + e.AggregateUID
}

type Event interface {
	GetEventTypeName() string
	GetAggregateName() string
}

// PushRequest is the body Pub/Sub posts to a push subscription.
type PushRequest struct {
	Message      PushMessage
	Subscription string
}

type PushMessage struct {
	Attributes map[string]string
	Data       []byte
	ID         string `json:"message_id"`
}

func ParseEventEnvelope(r io.Reader) (EventEnvelope, error) {
	msg := PushRequest{}
	err := json.NewDecoder(r).Decode(&msg)
	if err != nil {
		return EventEnvelope{}, fmt.Errorf("error parsing push-request: %s", err)
	}
	envlp := EventEnvelope{}
	err = json.Unmarshal(msg.Message.Data, &envlp)
	if err != nil {
		return EventEnvelope{}, fmt.Errorf("error parsing envelope: %s", err)
	}

	return envlp, nil
}

// NewPushRequest wraps an envelope the way Pub/Sub delivers it to a subscriber.
func NewPushRequest(subscription string, envelope EventEnvelope) (PushRequest, error) {
	data, err := json.Marshal(envelope)
	if err != nil {
		return PushRequest{}, fmt.Errorf("error marshalling envelope: %s", err)
	}
	return PushRequest{
		Message: PushMessage{
			Data: data,
			ID:   envelope.UID,
		},
		Subscription: subscription,
	}, nil
}

// UnmarshalPayload decodes the event carried by the envelope.
func UnmarshalPayload[T Event](envelope EventEnvelope) (T, error) {
	var event T
	err := json.Unmarshal([]byte(envelope.EventPayload), &event)
	if err != nil {
		return event, fmt.Errorf("error parsing payload of %s: %s", envelope.EventTypeName, err)
	}
	return event, nil
}
