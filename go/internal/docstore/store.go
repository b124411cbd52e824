// Package docstore is a versioned JSON document store with atomic multi-document writes.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Collection names a group of documents
type Collection string

const (
	Servers         Collection = "servers"
	Clubs           Collection = "clubs"
	Leagues         Collection = "leagues"
	TransferOffers  Collection = "transfer_offers"
	TransferHistory Collection = "transfer_history"
	FriendlyInvites Collection = "friendly_invites"
	FriendlyMatches Collection = "friendly_matches"
)

var (
	ErrNotFound = errors.New("document not found")
	ErrConflict = errors.New("document version conflict")
	ErrExists   = errors.New("document already exists")
)

// MaxAttempts bounds optimistic retries in Update
const MaxAttempts = 8

// Document is a stored JSON body and its version
type Document struct {
	Collection Collection
	ID         string
	Version    int64
	Body       json.RawMessage
}

type Op int

const (
	OpCreate Op = iota
	OpUpdate
	OpDelete
)

// Write is one step of an atomic batch.
// Update and Delete only succeed when Version matches the stored version.
type Write struct {
	Op         Op
	Collection Collection
	ID         string
	Version    int64
	Body       json.RawMessage
}

// Store is implemented by the memory, SQLite and Postgres backends
type Store interface {
	Get(ctx context.Context, c Collection, id string) (Document, error)
	// FindBy returns documents whose top-level field equals value, oldest first.
	FindBy(ctx context.Context, c Collection, field, value string) ([]Document, error)
	// List returns every document in the collection, oldest first.
	List(ctx context.Context, c Collection) ([]Document, error)
	// Apply commits every write or none of them.
	Apply(ctx context.Context, writes ...Write) error
}

// Create builds a create write for v.
func Create(c Collection, id string, v any) (Write, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return Write{}, fmt.Errorf("failed to encode %s/%s: %w", c, id, err)
	}
	return Write{Op: OpCreate, Collection: c, ID: id, Body: body}, nil
}

// Put builds an update write for v guarded by the version it was read at.
func Put(c Collection, id string, version int64, v any) (Write, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return Write{}, fmt.Errorf("failed to encode %s/%s: %w", c, id, err)
	}
	return Write{Op: OpUpdate, Collection: c, ID: id, Version: version, Body: body}, nil
}

// Delete builds a delete write guarded by version.
func Delete(c Collection, id string, version int64) Write {
	return Write{Op: OpDelete, Collection: c, ID: id, Version: version}
}

// Retry reruns fn while it fails with ErrConflict, up to MaxAttempts times.
func Retry(fn func() error) error {
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		err := fn()
		if !errors.Is(err, ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("gave up after %d attempts: %w", MaxAttempts, ErrConflict)
}

// Versioned pairs a decoded document with the version it was read at
type Versioned[T any] struct {
	Value   *T
	Version int64
}

// Load reads and decodes one document.
func Load[T any](ctx context.Context, s Store, c Collection, id string) (Versioned[T], error) {
	doc, err := s.Get(ctx, c, id)
	if err != nil {
		return Versioned[T]{}, err
	}
	return decode[T](doc)
}

// Query decodes every document matching field = value.
func Query[T any](ctx context.Context, s Store, c Collection, field, value string) ([]Versioned[T], error) {
	docs, err := s.FindBy(ctx, c, field, value)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](docs)
}

// All decodes every document of the collection.
func All[T any](ctx context.Context, s Store, c Collection) ([]Versioned[T], error) {
	docs, err := s.List(ctx, c)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](docs)
}

// Insert stores a new document.
func Insert(ctx context.Context, s Store, c Collection, id string, v any) error {
	w, err := Create(c, id, v)
	if err != nil {
		return err
	}
	return s.Apply(ctx, w)
}

// Update reads the document, applies fn and writes it back guarded by the read version.
// Version conflicts are retried with a fresh read. Errors from fn abort without writing.
func Update[T any](ctx context.Context, s Store, c Collection, id string, fn func(*T) error) (*T, error) {
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		cur, err := Load[T](ctx, s, c, id)
		if err != nil {
			return nil, err
		}
		if err := fn(cur.Value); err != nil {
			return nil, err
		}
		w, err := Put(c, id, cur.Version, cur.Value)
		if err != nil {
			return nil, err
		}
		err = s.Apply(ctx, w)
		if errors.Is(err, ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return cur.Value, nil
	}
	return nil, fmt.Errorf("failed to update %s/%s after %d attempts: %w", c, id, MaxAttempts, ErrConflict)
}

func decode[T any](doc Document) (Versioned[T], error) {
	v := new(T)
	if err := json.Unmarshal(doc.Body, v); err != nil {
		return Versioned[T]{}, fmt.Errorf("failed to decode %s/%s: %w", doc.Collection, doc.ID, err)
	}
	return Versioned[T]{Value: v, Version: doc.Version}, nil
}

func decodeAll[T any](docs []Document) ([]Versioned[T], error) {
	out := make([]Versioned[T], 0, len(docs))
	for _, d := range docs {
		v, err := decode[T](d)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
