package search

// odometer is a lazy mixed-radix counter: each call to next returns the
// current digit vector then advances by one, carrying overflow leftward
// like a car's odometer. It backs Munge's ordered-with-repetition
// enumeration and BTR's per-step-rounds x global-rounds sweep without ever materializing the full combination space.
type odometer struct {
	radices []int
	digits  []int
	done    bool
}

// newOdometer returns an odometer over the given radices, starting at the
// all-zero digit vector.
func newOdometer(radices []int) *odometer {
	return &odometer{radices: radices, digits: make([]int, len(radices))}
}

// next returns the next digit vector and true, or (nil, false) once every
// combination has been produced. The returned slice is a fresh copy safe
// for the caller to keep.
func (o *odometer) next() ([]int, bool) {
	if o.done {
		return nil, false
	}
	out := append([]int{}, o.digits...)

	i := len(o.digits) - 1
	for i >= 0 {
		o.digits[i]++
		if o.digits[i] < o.radices[i] {
			break
		}
		o.digits[i] = 0
		i--
	}
	if i < 0 {
		o.done = true
	}
	return out, true
}
