// Package limiter provides per-actor request rate limiting. The Redis
// store is authoritative in multi-replica deployments; the local store
// covers single-process and test runs.
package limiter

import "context"

// Store answers whether an actor may spend cost tokens right now.
type Store interface {
	Allow(ctx context.Context, actorID string, policy Policy, cost int) (bool, error)
}

// Policy describes a token bucket.
type Policy struct {
	// RPM is the sustained refill rate in requests per minute.
	RPM int
	// Burst is the bucket capacity.
	Burst int
}

// DefaultPolicy matches the portal's public traffic profile.
func DefaultPolicy(rpm int) Policy {
	if rpm <= 0 {
		rpm = 120
	}
	return Policy{RPM: rpm, Burst: rpm / 4}
}
