package myqueue

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/MarcGrol/deliverybackend/lib/myhttpclient"
)

// localTaskQueue delivers tasks to this process over http, outside the enqueueing request.
type localTaskQueue struct {
	baseURL string
	client  myhttpclient.HTTPSender
	wg      sync.WaitGroup
}

func newLocalQueue(c context.Context, opts Options) (TaskQueuer, func(), error) {
	q := &localTaskQueue{
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		client:  myhttpclient.New(""),
	}
	return q, q.wait, nil
}

func (q *localTaskQueue) Enqueue(c context.Context, task Task) error {
	if q.baseURL == "" {
		log.Printf("No base-url configured: dropping task %s", task.UID)
		return nil
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()

		status, _, err := q.client.Send(context.Background(), http.MethodPut, q.baseURL+task.WebhookURLPath, task.Payload)
		if err != nil {
			log.Printf("error delivering task %s: %s", task.UID, err)
			return
		}
		if status >= http.StatusMultipleChoices {
			log.Printf("error delivering task %s: http-status %d", task.UID, status)
		}
	}()

	return nil
}

func (q *localTaskQueue) wait() {
	q.wg.Wait()
}
