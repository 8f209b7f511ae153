package mypubsub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MarcGrol/deliverybackend/lib/myevents"
)

func TestLocalPubSub(t *testing.T) {
	c := context.TODO()

	received := make(chan myevents.EventEnvelope, 2)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		envelope, err := myevents.ParseEventEnvelope(r.Body)
		assert.NoError(t, err)
		received <- envelope
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ps, cleanup, err := New(c, Options{})
	assert.NoError(t, err)

	err = ps.CreateTopic(c, "checkout")
	assert.NoError(t, err)
	err = ps.Subscribe(c, "checkout", server.URL+"/api/notifications/event")
	assert.NoError(t, err)
	// subscribing twice is harmless
	err = ps.Subscribe(c, "checkout", server.URL+"/api/notifications/event")
	assert.NoError(t, err)

	err = ps.Publish(c, "checkout", `{"UID":"1","Topic":"checkout","EventTypeName":"checkout.orderPlaced"}`)
	assert.NoError(t, err)
	err = ps.Publish(c, "onboarding", `{"UID":"2"}`)
	assert.NoError(t, err)
	cleanup()

	assert.Len(t, received, 1)
	envelope := <-received
	assert.Equal(t, "1", envelope.UID)
	assert.Equal(t, "checkout.orderPlaced", envelope.EventTypeName)
}

func TestComposeSubscriptionID(t *testing.T) {
	id, err := composeSubscriptionID("checkout", "https://craven.example.com/api/notifications/event")
	assert.NoError(t, err)
	assert.Equal(t, "checkout_api_notifications_event", id)
}
