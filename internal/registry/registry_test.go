package registry

import (
	"errors"
	"testing"

	"github.com/rawblock/cryptomunge/pkg/models"
)

func TestDefaultRegistryInverseClosure(t *testing.T) {
	r := Default()
	for _, tr := range r.Iterate() {
		inv, err := r.Get(tr.InverseID)
		if err != nil {
			t.Fatalf("transform %d: inverse %d not registered: %v", tr.ID, tr.InverseID, err)
		}
		if inv.InverseID != tr.ID {
			t.Fatalf("transform %d <-> %d do not form a closed inverse pair", tr.ID, tr.InverseID)
		}
	}
}

func TestGetUnknownTransform(t *testing.T) {
	r := Default()
	_, err := r.Get(250)
	if !errors.Is(err, models.ErrUnknownTransform) {
		t.Fatalf("expected ErrUnknownTransform, got %v", err)
	}
}

func TestBuildRejectsBrokenInverse(t *testing.T) {
	r := New()
	r.Register(models.Transform{ID: 1, Name: "broken", InverseID: 2}, func(b, _ []byte) []byte { return b })
	err := r.Build()
	if !errors.Is(err, models.ErrInverseMissing) {
		t.Fatalf("expected ErrInverseMissing, got %v", err)
	}
}

func TestIterateOrderedByID(t *testing.T) {
	r := Default()
	ids := r.Iterate()
	for i := 1; i < len(ids); i++ {
		if ids[i-1].ID >= ids[i].ID {
			t.Fatalf("Iterate not sorted by id at index %d", i)
		}
	}
}
