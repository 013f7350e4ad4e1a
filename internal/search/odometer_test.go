package search

import "testing"

func TestOdometerEnumeratesAllCombinations(t *testing.T) {
	od := newOdometer([]int{2, 3})
	var got [][]int
	for {
		d, ok := od.next()
		if !ok {
			break
		}
		got = append(got, d)
	}
	if len(got) != 6 {
		t.Fatalf("expected 2*3=6 combinations, got %d", len(got))
	}
	first := got[0]
	if first[0] != 0 || first[1] != 0 {
		t.Fatalf("expected first combination to be [0 0], got %v", first)
	}
	last := got[len(got)-1]
	if last[0] != 1 || last[1] != 2 {
		t.Fatalf("expected last combination to be [1 2], got %v", last)
	}
}

func TestOdometerSingleDigit(t *testing.T) {
	od := newOdometer([]int{4})
	count := 0
	for {
		_, ok := od.next()
		if !ok {
			break
		}
		count++
	}
	if count != 4 {
		t.Fatalf("expected 4 combinations, got %d", count)
	}
}
