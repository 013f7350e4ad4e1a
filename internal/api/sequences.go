package api

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rawblock/cryptomunge/pkg/models"
)

// sequenceCache holds parsed sequences keyed by a generated id, so a
// POST /sequences/parse response id can be handed back to
// GET /sequences/:id/serialize without the caller re-submitting the full
// sequence body.
type sequenceCache struct {
	mu    sync.Mutex
	items map[uuid.UUID]models.ParsedSequence
}

func newSequenceCache() *sequenceCache {
	return &sequenceCache{items: make(map[uuid.UUID]models.ParsedSequence)}
}

func (c *sequenceCache) put(seq models.ParsedSequence) uuid.UUID {
	id := uuid.New()
	c.mu.Lock()
	c.items[id] = seq
	c.mu.Unlock()
	return id
}

func (c *sequenceCache) get(id uuid.UUID) (models.ParsedSequence, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	seq, ok := c.items[id]
	return seq, ok
}
