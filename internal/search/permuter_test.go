package search

import "testing"

func TestPermuterGeneratesAllDistinctOrderings(t *testing.T) {
	p := newPermuter([]byte{1, 2, 3})
	seen := make(map[string]bool)
	count := 0
	for {
		perm, ok := p.next()
		if !ok {
			break
		}
		seen[string(perm)] = true
		count++
	}
	if count != 6 {
		t.Fatalf("expected 3! = 6 permutations, got %d", count)
	}
	if len(seen) != 6 {
		t.Fatalf("expected 6 distinct permutations, got %d", len(seen))
	}
}

func TestPermuterFirstCallReturnsOriginalOrder(t *testing.T) {
	p := newPermuter([]byte{7, 9, 2})
	first, ok := p.next()
	if !ok {
		t.Fatal("expected first call to succeed")
	}
	if first[0] != 7 || first[1] != 9 || first[2] != 2 {
		t.Fatalf("expected original order preserved first, got %v", first)
	}
}

func TestPermuterSingleElement(t *testing.T) {
	p := newPermuter([]byte{5})
	count := 0
	for {
		_, ok := p.next()
		if !ok {
			break
		}
		count++
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 permutation of a single element, got %d", count)
	}
}
