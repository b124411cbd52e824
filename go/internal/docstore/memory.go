package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"
)

type entry struct {
	version int64
	seq     int64
	body    json.RawMessage
}

// Memory is a process-local Store
type Memory struct {
	mu   sync.RWMutex
	seq  int64
	docs map[Collection]map[string]*entry
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[Collection]map[string]*entry)}
}

var _ Store = (*Memory)(nil)

func (m *Memory) Get(ctx context.Context, c Collection, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.docs[c][id]
	if !ok {
		return Document{}, fmt.Errorf("%s/%s: %w", c, id, ErrNotFound)
	}
	return Document{Collection: c, ID: id, Version: e.version, Body: clone(e.body)}, nil
}

func (m *Memory) List(ctx context.Context, c Collection) ([]Document, error) {
	return m.find(ctx, c, func(json.RawMessage) bool { return true })
}

func (m *Memory) FindBy(ctx context.Context, c Collection, field, value string) ([]Document, error) {
	return m.find(ctx, c, func(body json.RawMessage) bool {
		var fields map[string]any
		if err := json.Unmarshal(body, &fields); err != nil {
			return false
		}
		v, ok := fields[field]
		return ok && fieldText(v) == value
	})
}

func (m *Memory) find(ctx context.Context, c Collection, match func(json.RawMessage) bool) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	type hit struct {
		doc Document
		seq int64
	}
	var hits []hit
	for id, e := range m.docs[c] {
		if match(e.body) {
			hits = append(hits, hit{Document{Collection: c, ID: id, Version: e.version, Body: clone(e.body)}, e.seq})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].seq < hits[j].seq })

	out := make([]Document, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.doc)
	}
	return out, nil
}

func (m *Memory) Apply(ctx context.Context, writes ...Write) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, w := range writes {
		e, exists := m.docs[w.Collection][w.ID]
		switch w.Op {
		case OpCreate:
			if exists {
				return fmt.Errorf("%s/%s: %w", w.Collection, w.ID, ErrExists)
			}
		case OpUpdate, OpDelete:
			if !exists {
				return fmt.Errorf("%s/%s: %w", w.Collection, w.ID, ErrNotFound)
			}
			if e.version != w.Version {
				return fmt.Errorf("%s/%s at version %d, write expected %d: %w", w.Collection, w.ID, e.version, w.Version, ErrConflict)
			}
		default:
			return fmt.Errorf("unknown write op %d", w.Op)
		}
	}

	for _, w := range writes {
		if m.docs[w.Collection] == nil {
			m.docs[w.Collection] = make(map[string]*entry)
		}
		switch w.Op {
		case OpCreate:
			m.seq++
			m.docs[w.Collection][w.ID] = &entry{version: 1, seq: m.seq, body: clone(w.Body)}
		case OpUpdate:
			e := m.docs[w.Collection][w.ID]
			e.version++
			e.body = clone(w.Body)
		case OpDelete:
			delete(m.docs[w.Collection], w.ID)
		}
	}
	return nil
}

func clone(b json.RawMessage) json.RawMessage {
	return append(json.RawMessage(nil), b...)
}

// fieldText renders a decoded JSON scalar the way Postgres ->> does.
func fieldText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
