/*
Package resilience provides a circuit breaker for calls to remote track hosts.

# Overview

The media prober checks that remote audio sources answer before playback is
reported as started. A host that keeps failing is short-circuited for a
while so the play button does not stall on every press.

# Usage

	group := resilience.NewGroup(resilience.Settings{
		Timeout: 30 * time.Second,
		ReadyToTrip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= 3
		},
	})

	err := group.Get(u.Host).Do(ctx, func(ctx context.Context) error {
		return probe(ctx, u)
	})

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           |
	                                           v
	                                         Open

A call aborted because the caller's context was cancelled releases its slot
without counting as a failure.
*/
package resilience
