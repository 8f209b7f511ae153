package mypubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/MarcGrol/deliverybackend/lib/myevents"
	"github.com/MarcGrol/deliverybackend/lib/myhttpclient"
)

// localPubSub pushes published messages to subscribers the way a Pub/Sub push subscription does.
type localPubSub struct {
	client        myhttpclient.HTTPSender
	mu            sync.Mutex
	subscriptions map[string][]string
	wg            sync.WaitGroup
}

func newLocalPubSub(c context.Context) (PubSub, func(), error) {
	ps := &localPubSub{
		client:        myhttpclient.New(""),
		subscriptions: map[string][]string{},
	}
	return ps, ps.wg.Wait, nil
}

func (ps *localPubSub) CreateTopic(c context.Context, topic string) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, found := ps.subscriptions[topic]; !found {
		ps.subscriptions[topic] = []string{}
	}
	return nil
}

func (ps *localPubSub) Subscribe(c context.Context, topic string, urlToPostTo string) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	for _, existing := range ps.subscriptions[topic] {
		if existing == urlToPostTo {
			return nil
		}
	}
	ps.subscriptions[topic] = append(ps.subscriptions[topic], urlToPostTo)
	return nil
}

func (ps *localPubSub) Publish(c context.Context, topic string, data string) error {
	ps.mu.Lock()
	urls := append([]string{}, ps.subscriptions[topic]...)
	ps.mu.Unlock()

	for _, u := range urls {
		body, err := json.Marshal(myevents.PushRequest{
			Message:      myevents.PushMessage{Data: []byte(data)},
			Subscription: topic,
		})
		if err != nil {
			return fmt.Errorf("error marshalling push-request for topic %s: %s", topic, err)
		}

		ps.wg.Add(1)
		go func(urlToPostTo string) {
			defer ps.wg.Done()

			status, _, err := ps.client.Send(context.Background(), http.MethodPost, urlToPostTo, body)
			if err != nil {
				log.Printf("error pushing message on topic %s to %s: %s", topic, urlToPostTo, err)
				return
			}
			if status >= http.StatusMultipleChoices {
				log.Printf("error pushing message on topic %s to %s: http-status %d", topic, urlToPostTo, status)
			}
		}(u)
	}

	return nil
}
