package sim

import "math"

// fcfsServer is first-come-first-served with a single service channel.
// TTNC is the remaining service time of the head job; sizes are drawn
// lazily, when a job reaches the head of the line.
type fcfsServer struct {
	station
}

func (s *fcfsServer) Reset() { s.resetCore() }

func (s *fcfsServer) Arrival() {
	s.numArrivals++
	s.arrivalTimes = append(s.arrivalTimes, s.clock)
	if s.state == 0 {
		s.ttnc = s.sizes.Sample(s.rng)
	}
	s.state++
}

func (s *fcfsServer) Update(dt float64) bool {
	s.ttnc -= dt
	s.clock += dt
	if s.state == 0 || s.ttnc > 0 {
		return false
	}
	s.state--
	t := s.clock - s.arrivalTimes[0]
	s.arrivalTimes = s.arrivalTimes[1:]
	if s.state == 0 {
		s.ttnc = math.Inf(1)
	} else {
		s.ttnc = s.sizes.Sample(s.rng)
	}
	s.recordCompletion(t)
	return true
}

func (s *fcfsServer) Clone() Server {
	return &fcfsServer{station: s.cloneCore()}
}

// fcfsChannel is one occupied service channel of a multi-channel FCFS
// station.
type fcfsChannel struct {
	remaining float64
	arrivedAt float64
}

// multiFCFSServer is FCFS with k concurrent channels fed by one FIFO wait
// queue. Waiters hold only their arrival stamp; a size is drawn when a job
// enters a channel. Departures can leave arrival order, so response times
// are computed per completion rather than through the FIFO mean updater.
type multiFCFSServer struct {
	station
	active []fcfsChannel
}

func (s *multiFCFSServer) Reset() {
	s.resetCore()
	s.active = s.active[:0]
}

func (s *multiFCFSServer) Arrival() {
	s.numArrivals++
	if len(s.active) < s.channels {
		s.active = append(s.active, fcfsChannel{
			remaining: s.sizes.Sample(s.rng),
			arrivedAt: s.clock,
		})
	} else {
		s.arrivalTimes = append(s.arrivalTimes, s.clock)
	}
	s.state++
	s.recalcTTNC()
}

func (s *multiFCFSServer) Update(dt float64) bool {
	s.ttnc -= dt
	s.clock += dt
	if len(s.active) == 0 {
		return false
	}
	for i := range s.active {
		s.active[i].remaining -= dt
	}
	if s.ttnc > 0 {
		return false
	}

	done := 0
	for i := 1; i < len(s.active); i++ {
		if s.active[i].remaining < s.active[done].remaining {
			done = i
		}
	}
	t := s.clock - s.active[done].arrivedAt
	s.active = append(s.active[:done], s.active[done+1:]...)
	s.state--

	// Pull the oldest waiter into the freed channel.
	if len(s.arrivalTimes) > 0 {
		arrivedAt := s.arrivalTimes[0]
		s.arrivalTimes = s.arrivalTimes[1:]
		s.active = append(s.active, fcfsChannel{
			remaining: s.sizes.Sample(s.rng),
			arrivedAt: arrivedAt,
		})
	}
	s.recalcTTNC()
	s.recordCompletion(t)
	return true
}

func (s *multiFCFSServer) recalcTTNC() {
	if len(s.active) == 0 {
		s.ttnc = math.Inf(1)
		return
	}
	m := s.active[0].remaining
	for _, ch := range s.active[1:] {
		m = math.Min(m, ch.remaining)
	}
	s.ttnc = m
}

func (s *multiFCFSServer) Clone() Server {
	return &multiFCFSServer{station: s.cloneCore()}
}
