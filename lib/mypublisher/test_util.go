package mypublisher

import (
	"encoding/json"

	"github.com/MarcGrol/deliverybackend/lib/myevents"
	"github.com/MarcGrol/deliverybackend/lib/mytime"
)

// CreatePubsubMessage builds the push-request body a subscriber receives for the given event.
func CreatePubsubMessage(topic string, event myevents.Event) string {
	eventBytes, _ := json.Marshal(event)
	envelope := myevents.EventEnvelope{
		UID:           "123",
		CreatedAt:     mytime.ExampleTime,
		Topic:         topic,
		AggregateUID:  event.GetAggregateName(),
		EventTypeName: event.GetEventTypeName(),
		EventPayload:  string(eventBytes),
	}

	req, _ := myevents.NewPushRequest(topic, envelope)
	reqBytes, _ := json.Marshal(req)

	return string(reqBytes)
}
