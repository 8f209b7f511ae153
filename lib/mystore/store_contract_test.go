package mystore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type order struct {
	UID       string
	Status    string
	Total     int64
	CreatedAt time.Time
}

type item struct {
	UID      string
	OrderUID string
}

var (
	exampleTime = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	order1      = order{UID: "1", Status: "pending", Total: 2784, CreatedAt: exampleTime.Add(2 * time.Minute)}
	order2      = order{UID: "2", Status: "cancelled", Total: 500, CreatedAt: exampleTime}
	order3      = order{UID: "3", Status: "pending", Total: 1200, CreatedAt: exampleTime.Add(time.Minute)}
)

// Every backend must behave the same.
func backends(t *testing.T) map[string]func(t *testing.T) (*Backend, string) {
	c := context.TODO()

	implementations := map[string]func(t *testing.T) (*Backend, string){
		"in-memory": func(t *testing.T) (*Backend, string) {
			return NewInMemoryBackend(), ""
		},
	}
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		implementations["postgres"] = func(t *testing.T) (*Backend, string) {
			backend, cleanup, err := NewBackend(c, Options{DatabaseURL: databaseURL})
			assert.NoError(t, err)
			t.Cleanup(cleanup)
			return backend, fmt.Sprintf("_%d", time.Now().UnixNano())
		}
	}
	return implementations
}

func TestStore(t *testing.T) {
	c := context.TODO()

	for name, create := range backends(t) {
		t.Run(name, func(t *testing.T) {
			backend, suffix := create(t)
			store, err := New[order](c, backend, "orders"+suffix)
			assert.NoError(t, err)

			t.Run("Get not found", func(t *testing.T) {
				_, found, err := store.Get(c, order1.UID)
				assert.NoError(t, err)
				assert.False(t, found)
			})

			t.Run("Put", func(t *testing.T) {
				for _, o := range []order{order1, order2, order3} {
					err = store.Put(c, o.UID, o)
					assert.NoError(t, err)
				}
			})

			t.Run("Get found", func(t *testing.T) {
				o, found, err := store.Get(c, order1.UID)
				assert.NoError(t, err)
				assert.True(t, found)
				assert.Equal(t, order1, o)
			})

			t.Run("List", func(t *testing.T) {
				all, err := store.List(c)
				assert.NoError(t, err)
				assert.Equal(t, []order{order1, order2, order3}, all)
			})

			t.Run("Query equal ordered by time", func(t *testing.T) {
				pending, err := store.Query(c, []Filter{{Field: "Status", Compare: "=", Value: "pending"}}, "CreatedAt")
				assert.NoError(t, err)
				assert.Equal(t, []order{order3, order1}, pending)
			})

			t.Run("Query greater than", func(t *testing.T) {
				large, err := store.Query(c, []Filter{{Field: "Total", Compare: ">", Value: 1000}}, "Total")
				assert.NoError(t, err)
				assert.Equal(t, []order{order3, order1}, large)
			})

			t.Run("Query unsupported comparison", func(t *testing.T) {
				_, err := store.Query(c, []Filter{{Field: "Status", Compare: "~", Value: "x"}}, "")
				assert.Error(t, err)
			})
		})
	}
}

func TestInMemoryQueryUnknownField(t *testing.T) {
	c := context.TODO()
	store := NewInMemoryStore[order]("orders")

	err := store.Put(c, order1.UID, order1)
	assert.NoError(t, err)

	_, err = store.Query(c, []Filter{{Field: "Unknown", Compare: "=", Value: "x"}}, "")
	assert.Error(t, err)
}

func TestTransaction(t *testing.T) {
	c := context.TODO()

	for name, create := range backends(t) {
		t.Run(name, func(t *testing.T) {
			testTransaction(t, c, func(t *testing.T) (Store[order], Store[item]) {
				backend, suffix := create(t)
				orderStore, err := New[order](c, backend, "orders"+suffix)
				assert.NoError(t, err)
				itemStore, err := New[item](c, backend, "order_items"+suffix)
				assert.NoError(t, err)
				return orderStore, itemStore
			})
		})
	}
}

func testTransaction(t *testing.T, c context.Context, setup func(t *testing.T) (Store[order], Store[item])) {
	t.Run("commit across stores", func(t *testing.T) {
		orderStore, itemStore := setup(t)

		err := orderStore.RunInTransaction(c, func(c context.Context) error {
			err := orderStore.Put(c, order1.UID, order1)
			if err != nil {
				return err
			}
			return itemStore.Put(c, "1_0", item{UID: "1_0", OrderUID: "1"})
		})
		assert.NoError(t, err)

		_, found, _ := orderStore.Get(c, order1.UID)
		assert.True(t, found)
		_, found, _ = itemStore.Get(c, "1_0")
		assert.True(t, found)
	})

	t.Run("rollback across stores", func(t *testing.T) {
		orderStore, itemStore := setup(t)
		err := orderStore.Put(c, order2.UID, order2)
		assert.NoError(t, err)

		err = orderStore.RunInTransaction(c, func(c context.Context) error {
			err := orderStore.Put(c, order1.UID, order1)
			if err != nil {
				return err
			}
			err = orderStore.Put(c, order2.UID, order{UID: "2", Status: "overwritten"})
			if err != nil {
				return err
			}
			err = itemStore.Put(c, "1_0", item{UID: "1_0", OrderUID: "1"})
			if err != nil {
				return err
			}
			return fmt.Errorf("outbox unavailable")
		})
		assert.EqualError(t, err, "outbox unavailable")

		_, found, _ := orderStore.Get(c, order1.UID)
		assert.False(t, found)
		o, found, _ := orderStore.Get(c, order2.UID)
		assert.True(t, found)
		assert.Equal(t, order2, o)
		items, _ := itemStore.List(c)
		assert.Empty(t, items)
	})

	t.Run("nested transaction joins outer", func(t *testing.T) {
		orderStore, itemStore := setup(t)

		err := orderStore.RunInTransaction(c, func(c context.Context) error {
			err := itemStore.RunInTransaction(c, func(c context.Context) error {
				return itemStore.Put(c, "1_0", item{UID: "1_0", OrderUID: "1"})
			})
			if err != nil {
				return err
			}
			return fmt.Errorf("failure after nested transaction")
		})
		assert.Error(t, err)

		_, found, _ := itemStore.Get(c, "1_0")
		assert.False(t, found)
	})
}

func TestJSONKey(t *testing.T) {
	type tagged struct {
		UID       string `json:"uid"`
		CreatedAt string `json:"createdAt,omitempty"`
		Plain     string
		Skipped   string `json:"-"`
	}
	assert.Equal(t, "uid", jsonKey[tagged]("UID"))
	assert.Equal(t, "createdAt", jsonKey[tagged]("CreatedAt"))
	assert.Equal(t, "Plain", jsonKey[tagged]("Plain"))
	assert.Equal(t, "Skipped", jsonKey[tagged]("Skipped"))
	assert.Equal(t, "Unknown", jsonKey[tagged]("Unknown"))
}
