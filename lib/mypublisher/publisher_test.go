package mypublisher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/deliverybackend/lib/myevents"
	"github.com/MarcGrol/deliverybackend/lib/mypubsub"
	"github.com/MarcGrol/deliverybackend/lib/myqueue"
	"github.com/MarcGrol/deliverybackend/lib/mystore"
	"github.com/MarcGrol/deliverybackend/lib/mytime"
)

type orderPlaced struct {
	OrderUID string
}

func (e orderPlaced) GetEventTypeName() string {
	return "checkout.orderPlaced"
}

func (e orderPlaced) GetAggregateName() string {
	return e.OrderUID
}

func TestSeal(t *testing.T) {
	envelope1, err := seal("checkout", orderPlaced{OrderUID: "order-1"}, mytime.ExampleTime)
	assert.NoError(t, err)
	assert.Equal(t, "checkout", envelope1.Topic)
	assert.Equal(t, "order-1", envelope1.AggregateUID)
	assert.Equal(t, "checkout.orderPlaced", envelope1.EventTypeName)
	assert.Equal(t, `{"OrderUID":"order-1"}`, envelope1.EventPayload)
	assert.Equal(t, mytime.ExampleTime, envelope1.CreatedAt)
	assert.False(t, envelope1.Published)
	_, err = uuid.Parse(envelope1.UID)
	assert.NoError(t, err)

	// creation time does not take part in the uid
	envelope2, err := seal("checkout", orderPlaced{OrderUID: "order-1"}, mytime.ExampleTime.Add(time.Hour))
	assert.NoError(t, err)
	assert.Equal(t, envelope1.UID, envelope2.UID)

	other, err := seal("checkout", orderPlaced{OrderUID: "order-2"}, mytime.ExampleTime)
	assert.NoError(t, err)
	assert.NotEqual(t, envelope1.UID, other.UID)

	otherTopic, err := seal("onboarding", orderPlaced{OrderUID: "order-1"}, mytime.ExampleTime)
	assert.NoError(t, err)
	assert.NotEqual(t, envelope1.UID, otherTopic.UID)
}

func setup(t *testing.T, ctrl *gomock.Controller) (context.Context, *mux.Router, mystore.Store[myevents.EventEnvelope], *mypubsub.MockPubSub, *myqueue.MockTaskQueuer, *transactionalPublisher) {
	c := context.TODO()
	router := mux.NewRouter()

	outbox := mystore.NewInMemoryStore[myevents.EventEnvelope](OutboxKind)
	pubsub := mypubsub.NewMockPubSub(ctrl)
	queue := myqueue.NewMockTaskQueuer(ctrl)
	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

	p := newTransactionalPublisher(outbox, pubsub, queue, nower)
	err := p.RegisterEndpoints(c, router)
	assert.NoError(t, err)

	return c, router, outbox, pubsub, queue, p
}

func TestPublish(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c, _, outbox, _, queue, p := setup(t, ctrl)

	t.Run("stores envelope and enqueues trigger", func(t *testing.T) {
		// given
		queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).DoAndReturn(func(c context.Context, task myqueue.Task) error {
			assert.Equal(t, fmt.Sprintf("/pubsub/checkout/%s", task.UID), task.WebhookURLPath)
			return nil
		})

		// when
		err := p.Publish(c, "checkout", orderPlaced{OrderUID: "order-1"})

		// then
		assert.NoError(t, err)
		envelopes, err := outbox.List(c)
		assert.NoError(t, err)
		assert.Len(t, envelopes, 1)
		assert.False(t, envelopes[0].Published)
	})

	t.Run("queue failure", func(t *testing.T) {
		// given
		queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(fmt.Errorf("queue down"))

		// when
		err := p.Publish(c, "checkout", orderPlaced{OrderUID: "order-2"})

		// then
		assert.Error(t, err)
	})
}

func TestProcessTrigger(t *testing.T) {
	t.Run("publishes pending envelopes once", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		c, router, outbox, pubsub, queue, p := setup(t, ctrl)
		queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(nil).Times(2)
		assert.NoError(t, p.Publish(c, "checkout", orderPlaced{OrderUID: "order-1"}))
		assert.NoError(t, p.Publish(c, "checkout", orderPlaced{OrderUID: "order-2"}))
		pubsub.EXPECT().Publish(gomock.Any(), "checkout", gomock.Any()).Return(nil).Times(2)

		// when
		request, _ := http.NewRequest(http.MethodPut, "/pubsub/checkout/abc", nil)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		assert.Contains(t, response.Body.String(), "Successfully published 2 events")
		envelopes, _ := outbox.List(c)
		for _, e := range envelopes {
			assert.True(t, e.Published)
		}

		// when triggered again nothing is published
		response = httptest.NewRecorder()
		router.ServeHTTP(response, request)
		assert.Equal(t, http.StatusOK, response.Code)
		assert.Contains(t, response.Body.String(), "Successfully published 0 events")
	})

	t.Run("pubsub failure keeps envelope pending", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		c, router, outbox, pubsub, queue, p := setup(t, ctrl)
		queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(nil)
		assert.NoError(t, p.Publish(c, "checkout", orderPlaced{OrderUID: "order-1"}))
		pubsub.EXPECT().Publish(gomock.Any(), "checkout", gomock.Any()).Return(fmt.Errorf("pubsub down"))

		// when
		request, _ := http.NewRequest(http.MethodPut, "/pubsub/checkout/abc", nil)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, http.StatusInternalServerError, response.Code)
		envelopes, _ := outbox.List(c)
		assert.Len(t, envelopes, 1)
		assert.False(t, envelopes[0].Published)
	})
}
