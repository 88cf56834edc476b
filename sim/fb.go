package sim

import "math"

// fbEpsilon detects jobs tied for minimum attained service. Without the
// tolerance, equal shares accumulated through floating-point debits would
// split the active set on the next update.
const fbEpsilon = 1e-12

// fbJob is one resident job of an FB station.
type fbJob struct {
	remaining float64
	attained  float64
	arrivedAt float64
}

// fbServer is foreground-background (least attained service): the jobs
// tied for minimum attained service share the single channel equally.
//
// Two event types expire the TTNC: a completion, or a level crossing where
// the active set's attained service reaches the next-higher level among
// inactive jobs. A level crossing is not a completion; Update returns
// false and the engine simply queries TTNC again.
type fbServer struct {
	station
	jobs []fbJob
}

func (s *fbServer) Reset() {
	s.resetCore()
	s.jobs = s.jobs[:0]
}

func (s *fbServer) Arrival() {
	s.numArrivals++
	s.jobs = append(s.jobs, fbJob{
		remaining: s.sizes.Sample(s.rng),
		arrivedAt: s.clock,
	})
	s.state++
	s.recalcTTNC()
}

func (s *fbServer) Update(dt float64) bool {
	s.ttnc -= dt
	s.clock += dt
	if len(s.jobs) == 0 {
		return false
	}

	minAtt := s.jobs[0].attained
	for _, j := range s.jobs[1:] {
		minAtt = math.Min(minAtt, j.attained)
	}
	active := 0
	for _, j := range s.jobs {
		if j.attained <= minAtt+fbEpsilon {
			active++
		}
	}
	work := dt / float64(active)
	for i := range s.jobs {
		if s.jobs[i].attained <= minAtt+fbEpsilon {
			s.jobs[i].remaining -= work
			s.jobs[i].attained += work
		}
	}

	if s.ttnc > 0 {
		return false
	}

	// Completions take precedence over level crossings.
	for i, j := range s.jobs {
		if j.remaining <= fbEpsilon {
			t := s.clock - j.arrivedAt
			s.jobs = append(s.jobs[:i], s.jobs[i+1:]...)
			s.state--
			s.recordCompletion(t)
			s.recalcTTNC()
			return true
		}
	}

	// Level crossing: the active set expanded; recompute and carry on.
	s.recalcTTNC()
	return false
}

func (s *fbServer) recalcTTNC() {
	if len(s.jobs) == 0 {
		s.ttnc = math.Inf(1)
		return
	}

	minAtt := s.jobs[0].attained
	for _, j := range s.jobs[1:] {
		minAtt = math.Min(minAtt, j.attained)
	}

	minRemActive := math.Inf(1)
	nextLevel := math.Inf(1)
	active := 0
	for _, j := range s.jobs {
		if j.attained <= minAtt+fbEpsilon {
			active++
			minRemActive = math.Min(minRemActive, j.remaining)
		} else {
			nextLevel = math.Min(nextLevel, j.attained)
		}
	}

	timeToCompletion := minRemActive * float64(active)
	timeToCrossing := (nextLevel - minAtt) * float64(active)
	s.ttnc = math.Min(timeToCompletion, timeToCrossing)
}

func (s *fbServer) Clone() Server {
	return &fbServer{station: s.cloneCore()}
}
