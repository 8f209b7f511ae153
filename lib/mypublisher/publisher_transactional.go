package mypublisher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/deliverybackend/lib/mycontext"
	"github.com/MarcGrol/deliverybackend/lib/myerrors"
	"github.com/MarcGrol/deliverybackend/lib/myevents"
	"github.com/MarcGrol/deliverybackend/lib/myhttp"
	"github.com/MarcGrol/deliverybackend/lib/mylog"
	"github.com/MarcGrol/deliverybackend/lib/mypubsub"
	"github.com/MarcGrol/deliverybackend/lib/myqueue"
	"github.com/MarcGrol/deliverybackend/lib/mystore"
	"github.com/MarcGrol/deliverybackend/lib/mytime"
)

const OutboxKind = "event_outbox"

// transactionalPublisher stores events in an outbox that lives on the same backend as the
// business data: an event is only published when the transaction that produced it commits.
type transactionalPublisher struct {
	outbox mystore.Store[myevents.EventEnvelope]
	queue  myqueue.TaskQueuer
	nower  mytime.Nower
	pubsub mypubsub.PubSub
	logger mylog.Logger
}

func New(c context.Context, backend *mystore.Backend, pubsub mypubsub.PubSub, queue myqueue.TaskQueuer, nower mytime.Nower) (*transactionalPublisher, error) {
	outbox, err := mystore.New[myevents.EventEnvelope](c, backend, OutboxKind)
	if err != nil {
		return nil, err
	}

	return newTransactionalPublisher(outbox, pubsub, queue, nower), nil
}

func newTransactionalPublisher(outbox mystore.Store[myevents.EventEnvelope], pubsub mypubsub.PubSub, queue myqueue.TaskQueuer, nower mytime.Nower) *transactionalPublisher {
	return &transactionalPublisher{
		outbox: outbox,
		queue:  queue,
		nower:  nower,
		pubsub: pubsub,
		logger: mylog.New("transactionalPublisher"),
	}
}

func (p *transactionalPublisher) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/pubsub/{topic}/{uid}", p.processTriggerPage()).Methods("PUT")
	return nil
}

func (p *transactionalPublisher) CreateTopic(c context.Context, topicName string) error {
	return p.pubsub.CreateTopic(c, topicName)
}

func (p *transactionalPublisher) Publish(c context.Context, topic string, event myevents.Event) error {
	envelope, err := seal(topic, event, p.nower.Now())
	if err != nil {
		return fmt.Errorf("error creating envelope: %s", err)
	}
	err = p.outbox.Put(c, envelope.UID, envelope)
	if err != nil {
		return fmt.Errorf("error storing envelope: %s", err)
	}

	err = p.queue.Enqueue(c, myqueue.Task{
		UID:            envelope.UID,
		WebhookURLPath: fmt.Sprintf("/pubsub/%s/%s", envelope.Topic, envelope.UID),
		Payload:        []byte{},
	})
	if err != nil {
		return fmt.Errorf("error queueing publication-trigger %s: %s", envelope.UID, err)
	}

	p.logger.Log(c, envelope.AggregateUID, mylog.SeverityInfo, "Enqueued event %s on topic %s", envelope.EventTypeName, envelope.Topic)

	return nil
}

func (p *transactionalPublisher) processTriggerPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(p.logger)

		topicName := mux.Vars(r)["topic"]
		eventUID := mux.Vars(r)["uid"]

		count, err := p.processTrigger(c, topicName, eventUID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: fmt.Sprintf("Successfully published %d events", count),
		})
	}
}

// processTrigger publishes every pending envelope, not only the one that triggered: a trigger
// that ran before its transaction committed is caught up by the next one.
func (p *transactionalPublisher) processTrigger(c context.Context, topicName string, uid string) (int, error) {
	envelopes, err := p.outbox.Query(c, []mystore.Filter{{Field: "Published", Compare: "=", Value: false}}, "CreatedAt")
	if err != nil {
		return 0, myerrors.NewInternalError(fmt.Errorf("error fetching envelopes: %s", err))
	}
	p.logger.Log(c, uid, mylog.SeverityDebug, "Trigger for %s: found %d unpublished events", topicName, len(envelopes))

	count := 0
	for _, pending := range envelopes {
		published := false
		err := p.outbox.RunInTransaction(c, func(c context.Context) error {
			// must be idempotent
			envelope, found, err := p.outbox.Get(c, pending.UID)
			if err != nil {
				return err
			}
			if !found || envelope.Published {
				return nil
			}

			jsonBytes, err := json.Marshal(envelope)
			if err != nil {
				return fmt.Errorf("error serializing event: %s", err)
			}

			err = p.pubsub.Publish(c, envelope.Topic, string(jsonBytes))
			if err != nil {
				return fmt.Errorf("error publishing event: %s", err)
			}

			// mark as published
			envelope.Published = true
			err = p.outbox.Put(c, envelope.UID, envelope)
			if err != nil {
				return fmt.Errorf("error storing envelope: %s", err)
			}
			published = true
			return nil
		})
		if err != nil {
			return count, myerrors.NewInternalError(err)
		}
		if published {
			count++
		}
	}

	return count, nil
}
