package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/Domenick1991/skyline/internal/store"
	"github.com/redis/go-redis/v9"
)

const maxWatchRetries = 5

var ErrConflict = errors.New("concurrent update, retries exhausted")

// Redis keeps each collection in one hash, field = record id.
type Redis struct {
	client  *redis.Client
	prefix  string
	cascade []CascadeRule
}

func NewRedis(client *redis.Client, prefix string, cascade []CascadeRule) *Redis {
	if prefix == "" {
		prefix = "skyline"
	}
	return &Redis{client: client, prefix: prefix, cascade: cascade}
}

func (r *Redis) SelectAll(ctx context.Context, collection string) ([]json.RawMessage, error) {
	fields, err := r.client.HGetAll(ctx, r.key(collection)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	ids := make([]int64, 0, len(fields))
	for field := range fields {
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]json.RawMessage, 0, len(ids))
	for _, id := range ids {
		out = append(out, json.RawMessage(fields[strconv.FormatInt(id, 10)]))
	}
	return out, nil
}

// Upsert merges payload into the stored record under WATCH.
func (r *Redis) Upsert(ctx context.Context, collection string, payload json.RawMessage) error {
	id, err := payloadID(payload)
	if err != nil {
		return err
	}
	key := r.key(collection)
	field := strconv.FormatInt(id, 10)

	txf := func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, key, field).Bytes()
		if err != nil && err != redis.Nil {
			return err
		}
		merged, err := mergeJSON(current, payload)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, field, []byte(merged))
			return nil
		})
		return err
	}

	for i := 0; i < maxWatchRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return nil
		}
		if err == redis.TxFailedErr {
			continue
		}
		return err
	}
	return fmt.Errorf("upsert %s/%d: %w", collection, id, ErrConflict)
}

// Delete removes the record and its cascade children in one MULTI block.
func (r *Redis) Delete(ctx context.Context, collection string, id int64) error {
	doomed := map[string][]string{collection: {strconv.FormatInt(id, 10)}}
	if err := r.collectChildren(ctx, collection, []int64{id}, doomed); err != nil {
		return err
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for coll, fields := range doomed {
			pipe.HDel(ctx, r.key(coll), fields...)
		}
		return nil
	})
	return err
}

func (r *Redis) collectChildren(ctx context.Context, parent string, ids []int64, doomed map[string][]string) error {
	if len(ids) == 0 {
		return nil
	}
	parents := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		parents[id] = struct{}{}
	}

	for _, rule := range childRules(r.cascade, parent) {
		rows, err := r.client.HGetAll(ctx, r.key(rule.Child)).Result()
		if err != nil && err != redis.Nil {
			return fmt.Errorf("cascade %s -> %s: %w", parent, rule.Child, err)
		}
		var childIDs []int64
		for field, payload := range rows {
			ref, err := int64Field(json.RawMessage(payload), rule.ForeignKey)
			if err != nil {
				continue
			}
			if _, ok := parents[ref]; !ok {
				continue
			}
			childID, err := strconv.ParseInt(field, 10, 64)
			if err != nil {
				continue
			}
			doomed[rule.Child] = append(doomed[rule.Child], field)
			childIDs = append(childIDs, childID)
		}
		if err := r.collectChildren(ctx, rule.Child, childIDs, doomed); err != nil {
			return err
		}
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) key(collection string) string {
	return fmt.Sprintf("%s:sync:%s", r.prefix, collection)
}

var _ store.Remote = (*Redis)(nil)
