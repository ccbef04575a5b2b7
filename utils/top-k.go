package utils

// ValIdx represents a value and the id it ranks
type ValIdx struct {
	Val   float64
	Index int64
}

// ranksAbove orders by value descending, then by id ascending, so ties
// always resolve the same way
func ranksAbove(a, b ValIdx) bool {
	if a.Val != b.Val {
		return a.Val > b.Val
	}
	return a.Index < b.Index
}

// TopKFinder is a structure to efficiently find top K elements
// It uses a min-heap to maintain the K best-ranked elements
type TopKFinder struct {
	minHeap []ValIdx // root is the worst-ranked element kept
}

// NewTopKFinder creates a new TopKFinder with preallocated memory
// maxK: maximum value of K that will be used
func NewTopKFinder(maxK int) *TopKFinder {
	return &TopKFinder{
		minHeap: make([]ValIdx, 0, max(maxK, 0)),
	}
}

// FindTopK returns the ids of the k best-ranked items, best first
func (f *TopKFinder) FindTopK(items []ValIdx, k int) []int64 {
	if k <= 0 || len(items) == 0 {
		return []int64{}
	}

	// Limit k to the length of items
	if k > len(items) {
		k = len(items)
	}

	// Reset slice to reuse memory
	f.minHeap = f.minHeap[:0]

	// Initialize min-heap with first k elements
	f.minHeap = append(f.minHeap, items[:k]...)
	f.buildMinHeap(k)

	// Process remaining elements
	for i := k; i < len(items); i++ {
		// If current element outranks the worst element in heap
		if ranksAbove(items[i], f.minHeap[0]) {
			f.minHeap[0] = items[i]
			f.siftDown(0, k-1)
		}
	}

	// Pop in worst-first order and fill from the back
	ret := make([]int64, k)
	for end := k - 1; end >= 0; end-- {
		ret[end] = f.minHeap[0].Index
		f.minHeap[0] = f.minHeap[end]
		f.siftDown(0, end-1)
	}

	return ret
}

// buildMinHeap builds a min-heap from an unsorted slice
// size: the size of the heap
func (f *TopKFinder) buildMinHeap(size int) {
	// Start from the last non-leaf node and sift down
	for i := size/2 - 1; i >= 0; i-- {
		f.siftDown(i, size-1)
	}
}

// siftDown moves an element down the heap until the heap property is restored
// root: the index of the element to sift down
// end: the last valid index in the heap
func (f *TopKFinder) siftDown(root, end int) {
	for {
		child := root*2 + 1
		if child > end {
			break
		}

		// Choose the worse-ranked child
		if child+1 <= end && ranksAbove(f.minHeap[child], f.minHeap[child+1]) {
			child++
		}

		// root already ranks below both children
		if !ranksAbove(f.minHeap[root], f.minHeap[child]) {
			break
		}

		f.minHeap[root], f.minHeap[child] = f.minHeap[child], f.minHeap[root]
		root = child
	}
}
