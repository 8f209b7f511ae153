package mypubsub

import "context"

type Options struct {
	GoogleCloudProject string
}

//go:generate mockgen -source=api.go -package mypubsub -destination pubsub_mock.go PubSub
type PubSub interface {
	Publish(c context.Context, topic string, data string) error
	CreateTopic(c context.Context, topic string) error
	Subscribe(c context.Context, topic string, urlToPostTo string) error
}

func New(c context.Context, opts Options) (PubSub, func(), error) {
	if opts.GoogleCloudProject != "" {
		return newGcloudPubSub(c, opts.GoogleCloudProject)
	}
	return newLocalPubSub(c)
}
