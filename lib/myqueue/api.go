package myqueue

import (
	"context"
)

type Task struct {
	UID            string
	WebhookURLPath string
	Payload        []byte
}

type Options struct {
	GoogleCloudProject string
	LocationID         string
	QueueName          string
	// BaseURL is where the local queue delivers its tasks
	BaseURL string
}

//go:generate mockgen -source=api.go -package myqueue -destination queuer_mock.go TaskQueuer
type TaskQueuer interface {
	Enqueue(c context.Context, task Task) error
}

func New(c context.Context, opts Options) (TaskQueuer, func(), error) {
	if opts.GoogleCloudProject != "" {
		return newGcloudQueue(c, opts)
	}
	return newLocalQueue(c, opts)
}
