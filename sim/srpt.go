package sim

import (
	"container/heap"
	"math"
)

// srptJob is a preempted job waiting in the SRPT heap.
type srptJob struct {
	remaining float64
	arrivedAt float64
}

// srptHeap orders preempted jobs by remaining work.
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type srptHeap []srptJob

func (h srptHeap) Len() int           { return len(h) }
func (h srptHeap) Less(i, j int) bool { return h[i].remaining < h[j].remaining }
func (h srptHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *srptHeap) Push(x any) {
	*h = append(*h, x.(srptJob))
}

func (h *srptHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[0 : n-1]
	return item
}

// srptServer is shortest-remaining-processing-time with a single channel.
// The running job is tracked outside the heap because its remaining work
// (the station TTNC) is continuously decremented; it re-enters the heap
// only when a shorter job arrives. Preemption is O(log n) per arrival.
type srptServer struct {
	station
	waiting srptHeap
	// arrival stamp of the running job; its remaining work is s.ttnc
	runningArrivedAt float64
}

func (s *srptServer) Reset() {
	s.resetCore()
	s.waiting = s.waiting[:0]
}

func (s *srptServer) Arrival() {
	s.numArrivals++
	if s.state > 0 {
		heap.Push(&s.waiting, srptJob{remaining: s.ttnc, arrivedAt: s.runningArrivedAt})
	}
	heap.Push(&s.waiting, srptJob{remaining: s.sizes.Sample(s.rng), arrivedAt: s.clock})
	next := heap.Pop(&s.waiting).(srptJob)
	s.ttnc = next.remaining
	s.runningArrivedAt = next.arrivedAt
	s.state++
}

func (s *srptServer) Update(dt float64) bool {
	s.ttnc -= dt
	s.clock += dt
	if s.state == 0 || s.ttnc > 0 {
		return false
	}
	s.state--
	t := s.clock - s.runningArrivedAt
	if s.state > 0 {
		next := heap.Pop(&s.waiting).(srptJob)
		s.ttnc = next.remaining
		s.runningArrivedAt = next.arrivedAt
	} else {
		s.ttnc = math.Inf(1)
	}
	s.recordCompletion(t)
	return true
}

func (s *srptServer) Clone() Server {
	return &srptServer{station: s.cloneCore()}
}
