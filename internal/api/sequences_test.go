package api

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rawblock/cryptomunge/pkg/models"
)

func TestSequenceCachePutGet(t *testing.T) {
	c := newSequenceCache()
	seq := models.ParsedSequence{
		Steps:        []models.SequenceStep{{TransformID: 1, Rounds: 2}},
		GlobalRounds: 3,
	}
	id := c.put(seq)

	got, ok := c.get(id)
	if !ok {
		t.Fatal("expected the just-inserted sequence to be retrievable")
	}
	if got.GlobalRounds != 3 || len(got.Steps) != 1 {
		t.Fatalf("got %+v, want %+v", got, seq)
	}
}

func TestSequenceCacheMissReturnsFalse(t *testing.T) {
	c := newSequenceCache()
	if _, ok := c.get(uuid.Nil); ok {
		t.Fatal("expected a lookup miss on an empty cache")
	}
}
