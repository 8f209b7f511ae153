package mypublisher

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MarcGrol/deliverybackend/lib/myevents"
)

// outboxNamespace seeds the name-based uids of outbox envelopes.
var outboxNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("deliverybackend/event_outbox"))

// seal wraps an event for the outbox. Publishing the same event twice yields the same uid,
// so a retried transaction overwrites its earlier envelope instead of duplicating it.
func seal(topic string, event myevents.Event, createdAt time.Time) (myevents.EventEnvelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return myevents.EventEnvelope{}, fmt.Errorf("error marshalling %s event: %s", event.GetEventTypeName(), err)
	}

	name := strings.Join([]string{topic, event.GetEventTypeName(), event.GetAggregateName(), string(payload)}, "\n")

	return myevents.EventEnvelope{
		UID:           uuid.NewSHA1(outboxNamespace, []byte(name)).String(),
		CreatedAt:     createdAt,
		Topic:         topic,
		AggregateUID:  event.GetAggregateName(),
		EventTypeName: event.GetEventTypeName(),
		EventPayload:  string(payload),
	}, nil
}
