package adapter

import (
	"context"
	"sort"
	"sync"
	"time"

	chat "github.com/xiaoxin-go/webchat/internal/pkg/chat/domain"
	repository "github.com/xiaoxin-go/webchat/internal/pkg/chat/persistence/repository/port"
)

// MemoryDirectoryRepository is an in-process repository.Directory used by
// tests and local runs without Postgres. A single mutex stands in for the
// database's unique-index guarantee on (owner, target, kind).
type MemoryDirectoryRepository struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*chat.Conversation
	byKey  map[directoryKey]int64
}

type directoryKey struct {
	ownerID  int64
	targetID int64
	kind     chat.Kind
}

func NewMemoryDirectoryRepository() *MemoryDirectoryRepository {
	return &MemoryDirectoryRepository{
		byID:  make(map[int64]*chat.Conversation),
		byKey: make(map[directoryKey]int64),
	}
}

var _ repository.Directory = (*MemoryDirectoryRepository)(nil)

func (r *MemoryDirectoryRepository) ResolveOrCreate(_ context.Context, ownerID, targetID int64, kind chat.Kind) (chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := directoryKey{ownerID: ownerID, targetID: targetID, kind: kind}
	if id, ok := r.byKey[key]; ok {
		return *r.byID[id], nil
	}

	r.nextID++
	now := time.Now()
	c := &chat.Conversation{
		ID:        r.nextID,
		OwnerID:   ownerID,
		TargetID:  targetID,
		Kind:      kind,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.byID[c.ID] = c
	r.byKey[key] = c.ID
	return *c, nil
}

func (r *MemoryDirectoryRepository) Get(_ context.Context, id int64) (chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return chat.Conversation{}, repository.ErrNotFound
	}
	return *c, nil
}

func (r *MemoryDirectoryRepository) ListForUser(_ context.Context, ownerID int64) ([]chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var convs []chat.Conversation
	for _, c := range r.byID {
		if c.OwnerID == ownerID {
			convs = append(convs, *c)
		}
	}
	sort.Slice(convs, func(i, j int) bool {
		if !convs[i].UpdatedAt.Equal(convs[j].UpdatedAt) {
			return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
		}
		return convs[i].ID > convs[j].ID
	})
	return convs, nil
}

func (r *MemoryDirectoryRepository) Touch(_ context.Context, id int64, lastMessage string, at time.Time, bumpUnread bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.LastMessage = lastMessage
	c.UpdatedAt = at
	if bumpUnread {
		c.Unread++
	}
	return nil
}

func (r *MemoryDirectoryRepository) ClearUnread(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.byID[id]; ok {
		c.Unread = 0
	}
	return nil
}

func (r *MemoryDirectoryRepository) Delete(_ context.Context, id, ownerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok || c.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(r.byID, id)
	delete(r.byKey, directoryKey{ownerID: c.OwnerID, targetID: c.TargetID, kind: c.Kind})
	return nil
}
