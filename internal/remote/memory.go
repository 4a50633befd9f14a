package remote

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/Domenick1991/skyline/internal/store"
)

// Memory is an in-process remote with the same merge and cascade semantics
// as Postgres. It backs the "memory" backend used for local runs.
type Memory struct {
	cascade []CascadeRule

	mu   sync.Mutex
	data map[string]map[int64]json.RawMessage
}

func NewMemory(cascade []CascadeRule) *Memory {
	return &Memory{cascade: cascade, data: make(map[string]map[int64]json.RawMessage)}
}

func (m *Memory) SelectAll(ctx context.Context, collection string) ([]json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.data[collection]
	ids := make([]int64, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]json.RawMessage, 0, len(ids))
	for _, id := range ids {
		out = append(out, append(json.RawMessage(nil), rows[id]...))
	}
	return out, nil
}

func (m *Memory) Upsert(ctx context.Context, collection string, payload json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id, err := payloadID(payload)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.data[collection]
	if !ok {
		rows = make(map[int64]json.RawMessage)
		m.data[collection] = rows
	}
	merged, err := mergeJSON(rows[id], payload)
	if err != nil {
		return err
	}
	rows[id] = merged
	return nil
}

func (m *Memory) Delete(ctx context.Context, collection string, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data[collection], id)
	m.deleteChildrenLocked(collection, []int64{id})
	return nil
}

func (m *Memory) deleteChildrenLocked(parent string, ids []int64) {
	if len(ids) == 0 {
		return
	}
	parents := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		parents[id] = struct{}{}
	}
	for _, rule := range childRules(m.cascade, parent) {
		var removed []int64
		for childID, payload := range m.data[rule.Child] {
			ref, err := int64Field(payload, rule.ForeignKey)
			if err != nil {
				continue
			}
			if _, ok := parents[ref]; ok {
				delete(m.data[rule.Child], childID)
				removed = append(removed, childID)
			}
		}
		m.deleteChildrenLocked(rule.Child, removed)
	}
}

var _ store.Remote = (*Memory)(nil)
