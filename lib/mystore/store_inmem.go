package mystore

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"time"
)

type inMemoryStore[T any] struct {
	backend *Backend
	kind    string
	items   map[string]T
}

// inMemoryTransaction journals undo-actions so that a failing transaction leaves every
// store of the backend as it was.
type inMemoryTransaction struct {
	backend *Backend
	undo    []func()
}

func newInMemoryStore[T any](backend *Backend, kind string) *inMemoryStore[T] {
	return &inMemoryStore[T]{
		backend: backend,
		kind:    kind,
		items:   map[string]T{},
	}
}

// NewInMemoryStore returns a store on a private in-memory backend.
func NewInMemoryStore[T any](kind string) Store[T] {
	return newInMemoryStore[T](NewInMemoryBackend(), kind)
}

func (s *inMemoryStore[T]) transaction(c context.Context) *inMemoryTransaction {
	tx, ok := c.Value(ctxTransactionKey{}).(*inMemoryTransaction)
	if !ok || tx.backend != s.backend {
		return nil
	}
	return tx
}

func (s *inMemoryStore[T]) RunInTransaction(c context.Context, f func(c context.Context) error) error {
	if s.transaction(c) != nil {
		// join the running transaction
		return f(c)
	}

	// Start transaction
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()

	tx := &inMemoryTransaction{backend: s.backend}

	// Within this block everything is transactional
	err := f(context.WithValue(c, ctxTransactionKey{}, tx))
	if err != nil {
		// Rollback
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		return err
	}

	// Commit
	return nil
}

func (s *inMemoryStore[T]) Put(c context.Context, uid string, value T) error {
	tx := s.transaction(c)
	if tx == nil {
		s.backend.mu.Lock()
		defer s.backend.mu.Unlock()
	} else {
		previous, existed := s.items[uid]
		tx.undo = append(tx.undo, func() {
			if existed {
				s.items[uid] = previous
			} else {
				delete(s.items, uid)
			}
		})
	}

	s.items[uid] = value

	return nil
}

func (s *inMemoryStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	if s.transaction(c) == nil {
		s.backend.mu.Lock()
		defer s.backend.mu.Unlock()
	}

	result, exists := s.items[uid]

	return result, exists, nil
}

func (s *inMemoryStore[T]) List(c context.Context) ([]T, error) {
	if s.transaction(c) == nil {
		s.backend.mu.Lock()
		defer s.backend.mu.Unlock()
	}

	return s.list(), nil
}

func (s *inMemoryStore[T]) list() []T {
	uids := make([]string, 0, len(s.items))
	for uid := range s.items {
		uids = append(uids, uid)
	}
	sort.Strings(uids)

	result := make([]T, 0, len(s.items))
	for _, uid := range uids {
		result = append(result, s.items[uid])
	}
	return result
}

func (s *inMemoryStore[T]) Query(c context.Context, filters []Filter, orderByField string) ([]T, error) {
	if s.transaction(c) == nil {
		s.backend.mu.Lock()
		defer s.backend.mu.Unlock()
	}

	result := []T{}
	for _, item := range s.list() {
		ok, err := matchesAll(item, filters)
		if err != nil {
			return nil, fmt.Errorf("error querying entities %s: %s", s.kind, err)
		}
		if ok {
			result = append(result, item)
		}
	}

	if orderByField != "" {
		var sortErr error
		sort.SliceStable(result, func(i, j int) bool {
			less, err := lessByField(result[i], result[j], orderByField)
			if err != nil {
				sortErr = err
			}
			return less
		})
		if sortErr != nil {
			return nil, fmt.Errorf("error ordering entities %s: %s", s.kind, sortErr)
		}
	}

	return result, nil
}

func fieldOf(item any, name string) (reflect.Value, error) {
	v := reflect.Indirect(reflect.ValueOf(item))
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("entity of type %T is not a struct", item)
	}
	field := v.FieldByName(name)
	if !field.IsValid() {
		return reflect.Value{}, fmt.Errorf("entity of type %T has no field %s", item, name)
	}
	return field, nil
}

func matchesAll(item any, filters []Filter) (bool, error) {
	for _, f := range filters {
		field, err := fieldOf(item, f.Field)
		if err != nil {
			return false, err
		}
		cmp, err := compareValues(field.Interface(), f.Value)
		if err != nil {
			return false, err
		}
		ok := false
		switch f.Compare {
		case "=":
			ok = cmp == 0
		case "!=":
			ok = cmp != 0
		case "<":
			ok = cmp < 0
		case "<=":
			ok = cmp <= 0
		case ">":
			ok = cmp > 0
		case ">=":
			ok = cmp >= 0
		default:
			return false, fmt.Errorf("unsupported comparison '%s'", f.Compare)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func lessByField(a, b any, name string) (bool, error) {
	fa, err := fieldOf(a, name)
	if err != nil {
		return false, err
	}
	fb, err := fieldOf(b, name)
	if err != nil {
		return false, err
	}
	cmp, err := compareValues(fa.Interface(), fb.Interface())
	if err != nil {
		return false, err
	}
	return cmp < 0, nil
}

func compareValues(a, b any) (int, error) {
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		if !ok {
			return 0, fmt.Errorf("cannot compare %T with %T", a, b)
		}
		return ta.Compare(tb), nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch {
	case va.CanInt() && vb.CanInt():
		return compareOrdered(va.Int(), vb.Int()), nil
	case va.CanUint() && vb.CanUint():
		return compareOrdered(va.Uint(), vb.Uint()), nil
	case va.CanFloat() && vb.CanFloat():
		return compareOrdered(va.Float(), vb.Float()), nil
	case va.Kind() == reflect.String && vb.Kind() == reflect.String:
		return compareOrdered(va.String(), vb.String()), nil
	case va.Kind() == reflect.Bool && vb.Kind() == reflect.Bool:
		if va.Bool() == vb.Bool() {
			return 0, nil
		}
		if !va.Bool() {
			return -1, nil
		}
		return 1, nil
	}
	return 0, fmt.Errorf("cannot compare %T with %T", a, b)
}

func compareOrdered[V int64 | uint64 | float64 | string](a, b V) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
