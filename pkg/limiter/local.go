package limiter

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LocalStore keeps one token bucket per actor in process memory. State
// is lost on restart and not shared between replicas.
type LocalStore struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

func NewLocalStore() *LocalStore {
	return &LocalStore{buckets: make(map[string]*rate.Limiter)}
}

func (s *LocalStore) Allow(_ context.Context, actorID string, policy Policy, cost int) (bool, error) {
	s.mu.Lock()
	lim, ok := s.buckets[actorID]
	if !ok {
		rps := rate.Limit(float64(policy.RPM) / 60.0)
		if rps <= 0 {
			rps = 1
		}
		burst := policy.Burst
		if burst < 1 {
			burst = 1
		}
		lim = rate.NewLimiter(rps, burst)
		s.buckets[actorID] = lim
	}
	s.mu.Unlock()

	return lim.AllowN(time.Now(), cost), nil
}
