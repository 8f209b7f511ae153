package mystore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both the pool and a running transaction.
type querier interface {
	Exec(c context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(c context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(c context.Context, sql string, args ...any) pgx.Row
}

var supportedComparisons = map[string]bool{
	"=": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
}

type postgresStore[T any] struct {
	pool  *pgxpool.Pool
	kind  string
	table string
}

func newPostgresStore[T any](c context.Context, pool *pgxpool.Pool, kind string) (*postgresStore[T], error) {
	s := &postgresStore[T]{
		pool:  pool,
		kind:  kind,
		table: pgx.Identifier{kind}.Sanitize(),
	}

	_, err := pool.Exec(c, `
		create table if not exists `+s.table+` (
			uid        text primary key,
			data       jsonb not null,
			updated_at timestamptz not null default now()
		)`)
	if err != nil {
		return nil, fmt.Errorf("error creating table for %s: %s", kind, err)
	}

	return s, nil
}

func (s *postgresStore[T]) db(c context.Context) querier {
	tx, ok := c.Value(ctxTransactionKey{}).(pgx.Tx)
	if ok {
		return tx
	}
	return s.pool
}

func (s *postgresStore[T]) RunInTransaction(c context.Context, f func(c context.Context) error) error {
	if _, ok := c.Value(ctxTransactionKey{}).(pgx.Tx); ok {
		// join the running transaction
		return f(c)
	}

	return pgx.BeginFunc(c, s.pool, func(tx pgx.Tx) error {
		return f(context.WithValue(c, ctxTransactionKey{}, tx))
	})
}

func (s *postgresStore[T]) Put(c context.Context, uid string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("error marshalling entity %s with uid %s: %s", s.kind, uid, err)
	}

	_, err = s.db(c).Exec(c, `
		insert into `+s.table+` (uid, data, updated_at)
		values ($1, $2::jsonb, now())
		on conflict (uid) do update set data = excluded.data, updated_at = now()
	`, uid, string(data))
	if err != nil {
		return fmt.Errorf("error storing entity %s with uid %s: %s", s.kind, uid, err)
	}

	return nil
}

func (s *postgresStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	var value T

	var data string
	err := s.db(c).QueryRow(c, `select data::text from `+s.table+` where uid = $1`, uid).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return value, false, nil
		}
		return value, false, fmt.Errorf("error fetching entity %s with uid %s: %s", s.kind, uid, err)
	}

	err = json.Unmarshal([]byte(data), &value)
	if err != nil {
		return value, false, fmt.Errorf("error unmarshalling entity %s with uid %s: %s", s.kind, uid, err)
	}

	return value, true, nil
}

func (s *postgresStore[T]) List(c context.Context) ([]T, error) {
	return s.query(c, `select data::text from `+s.table+` order by uid limit 100`)
}

func (s *postgresStore[T]) Query(c context.Context, filters []Filter, orderByField string) ([]T, error) {
	sql := strings.Builder{}
	sql.WriteString(`select data::text from ` + s.table)

	args := []any{}
	for i, f := range filters {
		if !supportedComparisons[f.Compare] {
			return nil, fmt.Errorf("error querying entities %s: unsupported comparison '%s'", s.kind, f.Compare)
		}
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("error querying entities %s: %s", s.kind, err)
		}

		if i == 0 {
			sql.WriteString(" where ")
		} else {
			sql.WriteString(" and ")
		}
		args = append(args, jsonKey[T](f.Field), string(value))
		fmt.Fprintf(&sql, "data->$%d::text %s $%d::jsonb", len(args)-1, f.Compare, len(args))
	}

	if orderByField != "" {
		args = append(args, jsonKey[T](orderByField))
		fmt.Fprintf(&sql, " order by data->$%d::text", len(args))
	}

	return s.query(c, sql.String(), args...)
}

func (s *postgresStore[T]) query(c context.Context, sql string, args ...any) ([]T, error) {
	rows, err := s.db(c).Query(c, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying entities %s: %s", s.kind, err)
	}
	defer rows.Close()

	result := []T{}
	for rows.Next() {
		var data string
		err = rows.Scan(&data)
		if err != nil {
			return nil, fmt.Errorf("error scanning entity %s: %s", s.kind, err)
		}
		var value T
		err = json.Unmarshal([]byte(data), &value)
		if err != nil {
			return nil, fmt.Errorf("error unmarshalling entity %s: %s", s.kind, err)
		}
		result = append(result, value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entities %s: %s", s.kind, err)
	}

	return result, nil
}

// jsonKey maps a Go field name onto the key encoding/json uses for it.
func jsonKey[T any](fieldName string) string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return fieldName
	}
	field, found := t.FieldByName(fieldName)
	if !found {
		return fieldName
	}
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return fieldName
	}
	return name
}
