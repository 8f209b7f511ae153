package mystore

import (
	"context"
	"fmt"
	"sync"

	"cloud.google.com/go/datastore"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ctxTransactionKey struct{}

type Filter struct {
	Field   string
	Compare string
	Value   any
}

type Store[T any] interface {
	RunInTransaction(c context.Context, f func(c context.Context) error) error
	Put(c context.Context, uid string, value T) error
	Get(c context.Context, uid string) (T, bool, error)
	List(c context.Context) ([]T, error)
	Query(c context.Context, filters []Filter, orderByField string) ([]T, error)
}

type Options struct {
	GoogleCloudProject string
	DatabaseURL        string
}

// Backend is shared by all stores of one process: a transaction started on one store is
// joined by every other store of the same backend that receives the transactional context.
type Backend struct {
	datastoreClient *datastore.Client
	pgPool          *pgxpool.Pool
	mu              sync.Mutex
}

func NewBackend(c context.Context, opts Options) (*Backend, func(), error) {
	if opts.GoogleCloudProject != "" {
		client, err := datastore.NewClient(c, opts.GoogleCloudProject)
		if err != nil {
			return nil, nil, fmt.Errorf("error creating datastore-client: %s", err)
		}
		return &Backend{datastoreClient: client}, func() { client.Close() }, nil
	}

	if opts.DatabaseURL != "" {
		pool, err := pgxpool.New(c, opts.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("error creating postgres-pool: %s", err)
		}
		return &Backend{pgPool: pool}, pool.Close, nil
	}

	return NewInMemoryBackend(), func() {}, nil
}

func NewInMemoryBackend() *Backend {
	return &Backend{}
}

// New returns a store for the collection with the given kind on the given backend.
func New[T any](c context.Context, backend *Backend, kind string) (Store[T], error) {
	switch {
	case backend.datastoreClient != nil:
		return newGcloudStore[T](backend.datastoreClient, kind), nil
	case backend.pgPool != nil:
		return newPostgresStore[T](c, backend.pgPool, kind)
	default:
		return newInMemoryStore[T](backend, kind), nil
	}
}
