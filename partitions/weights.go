package partitions

// WeightOne gives every element unit weight
func WeightOne() int64 { return 1 }

// WeightOnce hands out a single unit of weight: the call numbered Target
// (counting from zero) returns 1 and every other call returns 0. Counter
// tracks how many weights have been handed out so far.
type WeightOnce struct {
	Counter int64
	Target  int64
}

// Next returns the weight of the next element in sequence order
func (w *WeightOnce) Next() int64 {
	defer func() { w.Counter++ }()
	if w.Counter == w.Target {
		return 1
	}
	return 0
}

// Reset rewinds the counter so the state can drive another partition pass
func (w *WeightOnce) Reset() {
	w.Counter = 0
}
